package preview

import "testing"

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "chapter anchor becomes heading suffix",
			in: "<!-- {\"folio:document\":{\"id\":\"doc-1\"}} -->\n\n" +
				"Intro <!-- keep me -->\n\n" +
				"<!-- {\"folio:chapter\":{\"anchorId\":\"chapter-c1\",\"id\":\"c1\"}} -->\n" +
				"<a id=\"chapter-c1\"></a>\n" +
				"## First\n\n" +
				"<!-- {\"folio:paragraph\":{\"id\":\"p1\"}} -->\n" +
				"Text.\n",
			want: "Intro <!-- keep me -->\n\n## First {#chapter-c1}\n\nText.\n",
		},
		{
			name: "derived chapter anchor",
			in:   "<!-- {\"folio:chapter\":{\"id\":\"c9\"}} -->\n## Nine\n",
			want: "## Nine {#chapter-c9}\n",
		},
		{
			name: "anchor tag after heading",
			in:   "## Title\n<a id=\"t\"></a>\nbody",
			want: "## Title {#t}\nbody",
		},
		{
			name: "anchor tag before prose is kept",
			in:   "<a id=\"x\"></a>\nplain\n",
			want: "<a id=\"x\"></a>\nplain\n",
		},
		{
			name: "unterminated comment",
			in:   "text <!-- open\n## H",
			want: "text <!-- open\n## H",
		},
		{
			name: "fenced lines untouched",
			in:   "```\n<a id=\"x\"></a>\n## not a heading\n```\n",
			want: "```\n<a id=\"x\"></a>\n## not a heading\n```\n",
		},
		{
			name: "metadata suffix replaces hand suffix",
			in:   "<!-- {\"folio:chapter\":{\"anchorId\":\"a\",\"id\":\"c\"}} -->\n## H {#old}\n",
			want: "## H {#a}\n",
		},
		{
			name: "chapter anchor survives leading text",
			in:   "<!-- {\"folio:chapter\":{\"anchorId\":\"a\",\"id\":\"c\"}} -->\nLead.\n\n<a id=\"a\"></a>\n## H\n",
			want: "Lead.\n\n## H {#a}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in); got != tt.want {
				t.Errorf("Strip = %q, want %q", got, tt.want)
			}
		})
	}
}
