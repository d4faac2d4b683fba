package models

import "time"

// DocumentMeta holds the front matter of one prose document.
// The permalink is the stable identity of a document across syncs.
type DocumentMeta struct {
	Model
	Permalink        string     `gorm:"not null;unique" json:"permalink"`
	Title            string     `json:"title"`
	Layout           string     `json:"layout"`
	Sidenav          string     `json:"sidenav"`
	Type             string     `json:"type"`
	Category         string     `json:"category,omitempty"`
	Order            string     `gorm:"column:sort_order" json:"order,omitempty"`
	ExcerptSeparator string     `json:"-"`
	SourcePath       string     `gorm:"not null" json:"sourcePath"`
	Published        bool       `json:"published"`
	RevisedAt        *time.Time `json:"revisedAt,omitempty"`
	CharCount        uint       `gorm:"not null;default:0" json:"-"`
}

// TableName pins the table so raw queries and migrations agree.
func (DocumentMeta) TableName() string {
	return "document_metas"
}

// Known front matter values. Everything the generator renders is one of these.
const (
	LayoutTips = "tips"
	LayoutBlog = "blog"

	TypeMarkdown = "markdown"
)

type DocumentContent struct {
	Model
	Body    string       `gorm:"not null" json:"body"`
	Excerpt string       `json:"excerpt"`
	MetaID  uint         `json:"metaId" gorm:"not null;unique;foreignKey:MetaID;references:ID"`
	Meta    DocumentMeta `json:"document"`
}

func (DocumentContent) TableName() string {
	return "document_contents"
}
