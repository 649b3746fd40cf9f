package keywords

// clusterPrompt asks the LLM to pick a coherent cluster out of candidate
// keywords. The %s placeholder receives one "id: keyword (volume, difficulty)"
// line per candidate.
const clusterPrompt = `You are an SEO content strategist. From the candidate keywords below, select between 3 and 6 that belong together as one content cluster: they should share search intent and be coverable by a single piece of content.

Candidates (one per line, "id: keyword (volume, difficulty)"):
%s

Respond with a JSON object of this exact shape, and nothing else:
{"primaryKeyword": "<the strongest keyword text>", "keywordIds": ["<id>", ...], "suggestedContentType": "<blog|guide|comparison|landing>"}`

// titlesPrompt asks the LLM for title options and content angles for a
// cluster. The placeholders receive the primary keyword and the member
// keyword texts.
const titlesPrompt = `You are an SEO content strategist. Propose titles and angles for a piece of content targeting this keyword cluster.

Primary keyword: %s
Supporting keywords:
%s

Respond with a JSON object of this exact shape, and nothing else:
{"titles": ["<title option>", ...], "angles": ["<content angle>", ...]}

Give 3 to 5 titles and 2 to 4 angles.`
