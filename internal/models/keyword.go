package models

// KeywordStatus tracks a keyword bank entry through the research flow.
type KeywordStatus string

const (
	KeywordStatusNew       KeywordStatus = "New"
	KeywordStatusClustered KeywordStatus = "Clustered"
	KeywordStatusPromoted  KeywordStatus = "Promoted"
)

// Airtable field names for the Keyword Bank and Content Ideas tables.
const (
	FieldKeyword          = "Keyword"
	FieldSearchVolume     = "Search Volume"
	FieldDifficulty       = "Difficulty"
	FieldIntent           = "Intent"
	FieldSERPFeatures     = "SERP Features"
	FieldTrend            = "Trend"
	FieldOpportunityScore = "Opportunity Score"
	FieldQuickWinScore    = "Quick Win Score"
	FieldCluster          = "Cluster"

	FieldPrimaryKeyword = "Primary Keyword"
	FieldMemberKeywords = "Member Keywords"
	FieldSuggestedType  = "Suggested Content Type"
	FieldTitleOptions   = "Title Options"
	FieldContentAngles  = "Content Angles"
	FieldRawResponse    = "Raw Response"
)

// Keyword is one keyword bank entry with its SEO metrics and scores.
// A keyword belongs to zero or one cluster.
type Keyword struct {
	ID               string        `json:"id,omitempty"`
	Keyword          string        `json:"keyword"`
	SearchVolume     int           `json:"searchVolume"`
	Difficulty       int           `json:"difficulty"`
	Intent           string        `json:"intent,omitempty"`
	SERPFeatures     []string      `json:"serpFeatures,omitempty"`
	Trend            string        `json:"trend,omitempty"`
	OpportunityScore float64       `json:"opportunityScore"`
	QuickWinScore    float64       `json:"quickWinScore"`
	ClusterID        string        `json:"clusterId,omitempty"`
	Status           KeywordStatus `json:"status"`
}

// ContentIdea is a cluster of related keywords with generated title options
// and content angles, promotable into a ContentItem.
type ContentIdea struct {
	ID             string   `json:"id,omitempty"`
	PrimaryKeyword string   `json:"primaryKeyword"`
	KeywordIDs     []string `json:"keywordIds"`
	SuggestedType  string   `json:"suggestedType,omitempty"`
	TitleOptions   []string `json:"titleOptions,omitempty"`
	ContentAngles  []string `json:"contentAngles,omitempty"`
	RawResponse    string   `json:"rawResponse,omitempty"`
	Status         string   `json:"status,omitempty"`
}
