// Package content holds the static copy of the site: marketing sections, the article and
// the seed state of the blog view.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"javinity/internal/domain"
)

//go:embed site.yaml
var siteYAML []byte

type Site struct {
	Name string `yaml:"name"`
	Home Home   `yaml:"home"`
	Blog Blog   `yaml:"blog"`
}

type Home struct {
	Hero       Hero       `yaml:"hero"`
	Featured   []PostCard `yaml:"featured"`
	About      Section    `yaml:"about"`
	Newsletter Section    `yaml:"newsletter"`
}

type Hero struct {
	Title   string `yaml:"title"`
	Tagline string `yaml:"tagline"`
	CTA     string `yaml:"cta"`
	Image   string `yaml:"image"`
}

type PostCard struct {
	Title       string `yaml:"title"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
}

type Section struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

type Author struct {
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar"`
	Bio    string `yaml:"bio"`
}

type ArticleSection struct {
	Heading    string   `yaml:"heading"`
	Level      int      `yaml:"level"`
	Paragraphs []string `yaml:"paragraphs"`
}

// Blog is the article shown on /blog together with its seed interaction state.
type Blog struct {
	Author      Author           `yaml:"author"`
	Published   string           `yaml:"published"`
	Title       string           `yaml:"title"`
	Cover       string           `yaml:"cover"`
	Intro       []string         `yaml:"intro"`
	Sections    []ArticleSection `yaml:"sections"`
	Likes       int              `yaml:"likes"`
	Comments    []domain.Comment `yaml:"comments"`
	Recommended []PostCard       `yaml:"recommended"`
}

// Default returns the embedded site content.
func Default() (*Site, error) {
	return Parse(siteYAML)
}

// Parse decodes and checks site content.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("decode site content: %w", err)
	}
	if err := site.validate(); err != nil {
		return nil, fmt.Errorf("invalid site content: %w", err)
	}
	return &site, nil
}

func (s *Site) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("site name is required")
	}
	if s.Blog.Likes <= 0 {
		return fmt.Errorf("blog like seed must be positive, got %d", s.Blog.Likes)
	}
	seen := make(map[int64]struct{}, len(s.Blog.Comments))
	for _, c := range s.Blog.Comments {
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("seed comment %d has no text", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate seed comment id %d", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for i := range s.Blog.Sections {
		if lvl := s.Blog.Sections[i].Level; lvl != 2 && lvl != 3 {
			s.Blog.Sections[i].Level = 2
		}
	}
	for i := range s.Home.Featured {
		if s.Home.Featured[i].Link == "" {
			s.Home.Featured[i].Link = "/blog"
		}
	}
	return nil
}

// SeedComments returns a fresh copy of the blog's seed comments.
func (b Blog) SeedComments() []domain.Comment {
	return append([]domain.Comment(nil), b.Comments...)
}
