package keywords

import "testing"

func TestExtractJSON(t *testing.T) {
	type parsed struct {
		PrimaryKeyword string   `json:"primaryKeyword"`
		KeywordIDs     []string `json:"keywordIds"`
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		want    string
	}{
		{
			"bare object",
			`{"primaryKeyword": "crm software", "keywordIds": ["kw1"]}`,
			false,
			"crm software",
		},
		{
			"object with prose around it",
			"Here is the cluster I selected:\n```json\n{\"primaryKeyword\": \"crm software\", \"keywordIds\": [\"kw1\", \"kw2\"]}\n```\nLet me know if you need changes.",
			false,
			"crm software",
		},
		{
			"no braces at all",
			"I could not find a coherent cluster in these keywords.",
			true,
			"",
		},
		{
			"braces around invalid JSON",
			"{this is not json}",
			true,
			"",
		},
		{
			"empty string",
			"",
			true,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p parsed
			err := ExtractJSON(tt.raw, &p)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got %+v", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.PrimaryKeyword != tt.want {
				t.Errorf("Expected primaryKeyword %q, got %q", tt.want, p.PrimaryKeyword)
			}
		})
	}
}
