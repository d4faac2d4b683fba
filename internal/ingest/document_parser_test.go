package ingest_test

import (
	"testing"
	"time"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/ingest"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

// ####################### valid behavior tests
func TestParseDocument_FullFrontMatter(t *testing.T) {
	p := newTestParser()

	raw := "---\n" +
		"title: \"Tip of the Week #1: string_view\"\n" +
		"layout: tips\n" +
		"sidenav: side-nav-tips\n" +
		"published: true\n" +
		"permalink: /tips/1\n" +
		"type: markdown\n" +
		"order: \"001\"\n" +
		"category: C++ Tips\n" +
		"---\n" +
		"\n" +
		"Originally posted as TotW #1 on April 20, 2012\n" +
		"\n" +
		"Updated 2017-09-18\n" +
		"\n" +
		"## What's a `string_view`?\n"

	got, err := p.ParseDocument("tips/1.md", raw)
	if err != nil {
		t.Fatalf("want NO error, but got: %v", err)
	}

	wantRevisedAt := time.Date(2017, 9, 18, 0, 0, 0, 0, time.UTC)
	wantMeta := models.DocumentMeta{
		Permalink:  "/tips/1",
		Title:      "Tip of the Week #1: string_view",
		Layout:     "tips",
		Sidenav:    "side-nav-tips",
		Type:       "markdown",
		Category:   "C++ Tips",
		Order:      "001",
		SourcePath: "tips/1.md",
		Published:  true,
		RevisedAt:  &wantRevisedAt,
		CharCount:  uint(len("Originally posted as TotW #1 on April 20, 2012\n\nUpdated 2017-09-18\n\n## What's a `string_view`?")),
	}

	if !cmp.Equal(got.Meta, wantMeta) {
		t.Error(cmp.Diff(wantMeta, got.Meta))
	}

	wantExcerpt := "Originally posted as TotW #1 on April 20, 2012"
	if got.Excerpt != wantExcerpt {
		t.Errorf("got excerpt %q, want %q", got.Excerpt, wantExcerpt)
	}

	wantBody := "\nOriginally posted as TotW #1 on April 20, 2012\n\nUpdated 2017-09-18\n\n## What's a `string_view`?\n"
	if got.Body != wantBody {
		t.Errorf("got body %q, want %q", got.Body, wantBody)
	}
}

func TestParseDocument_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		raw      string
		wantMeta models.DocumentMeta
	}{
		{
			name: "no front matter",
			path: "tips/55.md",
			raw:  "# Hello\n",
			wantMeta: models.DocumentMeta{
				Permalink:  "/tips/55",
				Title:      "55",
				Type:       "markdown",
				SourcePath: "tips/55.md",
				Published:  true,
				CharCount:  7,
			},
		},
		{
			name: "published defaults to true",
			path: "blog/launch.md",
			raw:  "---\ntitle: Launch\nlayout: blog\n---\n\nWelcome!\n",
			wantMeta: models.DocumentMeta{
				Permalink:  "/blog/launch",
				Title:      "Launch",
				Layout:     "blog",
				Type:       "markdown",
				SourcePath: "blog/launch.md",
				Published:  true,
				CharCount:  8,
			},
		},
		{
			name: "published false is respected",
			path: "drafts/wip.md",
			raw:  "---\ntitle: Draft\npublished: false\n---\n\nSoon.\n",
			wantMeta: models.DocumentMeta{
				Permalink:  "/drafts/wip",
				Title:      "Draft",
				Type:       "markdown",
				SourcePath: "drafts/wip.md",
				Published:  false,
				CharCount:  5,
			},
		},
		{
			name: "numeric order is normalized",
			path: "tips/101.md",
			raw:  "---\ntitle: Tip 101\nlayout: tips\norder: 101\n---\n\nBody.\n",
			wantMeta: models.DocumentMeta{
				Permalink:  "/tips/101",
				Title:      "Tip 101",
				Layout:     "tips",
				Type:       "markdown",
				Order:      "101",
				SourcePath: "tips/101.md",
				Published:  true,
				CharCount:  5,
			},
		},
		{
			name: "permalink gains the leading slash",
			path: "tips/1.md",
			raw:  "---\ntitle: Tip 1\npermalink: tips/1\n---\n\nBody.\n",
			wantMeta: models.DocumentMeta{
				Permalink:  "/tips/1",
				Title:      "Tip 1",
				Type:       "markdown",
				SourcePath: "tips/1.md",
				Published:  true,
				CharCount:  5,
			},
		},
		{
			name: "title falls back to the file name",
			path: "guides/getting-started.md",
			raw:  "---\nlayout: tips\n---\n\nBody.\n",
			wantMeta: models.DocumentMeta{
				Permalink:  "/guides/getting-started",
				Title:      "Getting Started",
				Layout:     "tips",
				Type:       "markdown",
				SourcePath: "guides/getting-started.md",
				Published:  true,
				CharCount:  5,
			},
		},
		{
			name: "spaces in the path are sanitized",
			path: "tips/what a tip.md",
			raw:  "# Hi\n",
			wantMeta: models.DocumentMeta{
				Permalink:  "/tips/what_a_tip",
				Title:      "What A Tip",
				Type:       "markdown",
				SourcePath: "tips/what a tip.md",
				Published:  true,
				CharCount:  4,
			},
		},
	}

	p := newTestParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseDocument(tt.path, tt.raw)
			if err != nil {
				t.Fatalf("want NO error, but got: %v", err)
			}

			if !cmp.Equal(got.Meta, tt.wantMeta) {
				t.Error(cmp.Diff(tt.wantMeta, got.Meta))
			}
		})
	}
}

func TestParseDocument_Excerpt(t *testing.T) {
	tests := []struct {
		name             string
		defaultSeparator string
		raw              string
		wantExcerpt      string
		wantSeparator    string
	}{
		{
			name:             "default separator takes the first paragraph",
			defaultSeparator: "\n\n",
			raw:              "---\ntitle: Tip\n---\n\nFirst paragraph.\n\nSecond paragraph.\n",
			wantExcerpt:      "First paragraph.",
		},
		{
			name:             "declared separator wins",
			defaultSeparator: "\n\n",
			raw:              "---\ntitle: Tip\nexcerpt_separator: \"<!--end-->\"\n---\n\nTeaser text.\n<!--end-->\nRest of the body.\n",
			wantExcerpt:      "Teaser text.",
			wantSeparator:    "<!--end-->",
		},
		{
			name:             "separator absent from the body yields no excerpt",
			defaultSeparator: "\n\n",
			raw:              "---\ntitle: Tip\nexcerpt_separator: \"@@@\"\n---\n\nJust one paragraph.\n",
			wantExcerpt:      "",
			wantSeparator:    "@@@",
		},
		{
			name:             "no separator configured",
			defaultSeparator: "",
			raw:              "---\ntitle: Tip\n---\n\nFirst paragraph.\n\nSecond paragraph.\n",
			wantExcerpt:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser()
			p.DefaultExcerptSeparator = tt.defaultSeparator

			got, err := p.ParseDocument("tips/1.md", tt.raw)
			if err != nil {
				t.Fatalf("want NO error, but got: %v", err)
			}

			if got.Excerpt != tt.wantExcerpt {
				t.Errorf("got excerpt %q, want %q", got.Excerpt, tt.wantExcerpt)
			}

			if got.Meta.ExcerptSeparator != tt.wantSeparator {
				t.Errorf("got declared separator %q, want %q", got.Meta.ExcerptSeparator, tt.wantSeparator)
			}
		})
	}
}

func TestParseDocument_RevisedAt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{
			name: "iso annotation",
			raw:  "---\ntitle: Tip\n---\n\nUpdated 2017-09-18\n",
			want: timePtr(time.Date(2017, 9, 18, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "long form annotation",
			raw:  "---\ntitle: Tip\n---\n\nUpdated April 20, 2012\n",
			want: timePtr(time.Date(2012, 4, 20, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "abbreviated month annotation",
			raw:  "---\ntitle: Tip\n---\n\nUpdated Nov 18, 2022\n",
			want: timePtr(time.Date(2022, 11, 18, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "newest annotation wins",
			raw:  "---\ntitle: Tip\n---\n\nUpdated April 20, 2012\n\nSome prose.\n\nUpdated 2017-09-18\n",
			want: timePtr(time.Date(2017, 9, 18, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "no annotation",
			raw:  "---\ntitle: Tip\n---\n\nNothing dated here.\n",
			want: nil,
		},
	}

	p := newTestParser()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseDocument("tips/1.md", tt.raw)
			if err != nil {
				t.Fatalf("want NO error, but got: %v", err)
			}

			if !cmp.Equal(got.Meta.RevisedAt, tt.want) {
				t.Error(cmp.Diff(tt.want, got.Meta.RevisedAt))
			}
		})
	}
}

// ####################### invalid behavior tests
func TestParseDocument_InvalidFrontMatter(t *testing.T) {
	p := newTestParser()

	_, err := p.ParseDocument("tips/1.md", "---\ntitle: [unclosed\n---\n\nBody.\n")
	if err == nil {
		t.Fatal("want error, but got nil")
	}
}

// ####################### creating fixtures
func newTestParser() *ingest.DocumentParser {
	env := environment.Null()
	env.Logger = logging.DefaultLogger{Logger: zap.NewNop().Sugar()}

	return &ingest.DocumentParser{Env: env, DefaultExcerptSeparator: "\n\n"}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
