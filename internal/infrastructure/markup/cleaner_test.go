package markup

import (
	"testing"

	"corpusview/internal/domain"
)

func TestText(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{in: "<b>Grève</b> &amp; manifestation", want: "Grève & manifestation"},
		{in: "Plain title", want: "Plain title"},
		{in: "<p>Line one</p>\n<p>Line  two</p>", want: "Line one Line two"},
		{in: "Tom &quot;the cat&quot; &lt;3", want: `Tom "the cat" <3`},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanLeavesSourceUntouched(t *testing.T) {
	t.Parallel()

	b := domain.Bundle{
		Articles: []domain.Article{{ID: "<a1>", Title: "<i>Title</i>", Date: "2022-01-01"}},
		Events:   []domain.Event{{ID: "e1", Name: "Event &amp; co"}},
		Topics:   []domain.Topic{{ID: "t1", Name: "<span>Topic</span>"}},
		Entities: []domain.Entity{{ID: "n1", Name: "Alice"}},
	}

	out := NewCleaner(nil).Clean(b)
	if out.Articles[0].Title != "Title" || out.Articles[0].ID != "<a1>" {
		t.Fatalf("unexpected article: %+v", out.Articles[0])
	}
	if out.Events[0].Name != "Event & co" {
		t.Fatalf("unexpected event name: %q", out.Events[0].Name)
	}
	if out.Topics[0].Name != "Topic" {
		t.Fatalf("unexpected topic name: %q", out.Topics[0].Name)
	}
	if b.Articles[0].Title != "<i>Title</i>" {
		t.Fatalf("source bundle was mutated")
	}
}
