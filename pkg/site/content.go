package site

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Content is everything the marketing pages show.
type Content struct {
	Company      Company       `yaml:"company"`
	Services     []Service     `yaml:"services"`
	Pricing      []Tier        `yaml:"pricing"`
	FAQ          []Question    `yaml:"faq"`
	Testimonials []Testimonial `yaml:"testimonials"`
}

// Company holds the agency facts shown in the header, footer and about page.
type Company struct {
	Name    string   `yaml:"name"`
	Tagline string   `yaml:"tagline"`
	Intro   string   `yaml:"intro"`
	Email   string   `yaml:"email"`
	Phone   string   `yaml:"phone"`
	Address string   `yaml:"address"`
	CVR     string   `yaml:"cvr"`
	Founded int      `yaml:"founded"`
	Story   string   `yaml:"story"`
	Facts   []Fact   `yaml:"facts"`
	Team    []Person `yaml:"team"`
}

// Fact is a headline figure such as "120+ sites launched".
type Fact struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Person is a team member on the about page.
type Person struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
}

// Service is one offering on the services page.
type Service struct {
	Slug     string   `yaml:"slug"`
	Title    string   `yaml:"title"`
	Summary  string   `yaml:"summary"`
	Features []string `yaml:"features"`
}

// Tier is a pricing package.
type Tier struct {
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Period      string   `yaml:"period"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
	Highlighted bool     `yaml:"highlighted"`
}

// Question is a FAQ entry.
type Question struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	Quote   string `yaml:"quote"`
	Author  string `yaml:"author"`
	Company string `yaml:"company"`
}

// LoadContent reads the content document at path, or the built-in content
// when path is empty. Unknown keys are rejected so typos surface at startup.
func LoadContent(path string) (*Content, error) {
	data := defaultContent
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading site content: %w", err)
		}
	}
	return ParseContent(data)
}

// ParseContent decodes and validates a content document.
func ParseContent(data []byte) (*Content, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Content
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing site content: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid site content: %w", err)
	}
	return &c, nil
}

func (c *Content) validate() error {
	var errs []error
	if c.Company.Name == "" {
		errs = append(errs, errors.New("company.name is required"))
	}
	seen := make(map[string]bool, len(c.Services))
	for i, s := range c.Services {
		if s.Slug == "" || s.Title == "" {
			errs = append(errs, fmt.Errorf("services[%d]: slug and title are required", i))
		}
		if seen[s.Slug] {
			errs = append(errs, fmt.Errorf("services[%d]: duplicate slug %q", i, s.Slug))
		}
		seen[s.Slug] = true
	}
	for i, t := range c.Pricing {
		if t.Name == "" || t.Price == "" {
			errs = append(errs, fmt.Errorf("pricing[%d]: name and price are required", i))
		}
	}
	for i, q := range c.FAQ {
		if q.Question == "" || q.Answer == "" {
			errs = append(errs, fmt.Errorf("faq[%d]: question and answer are required", i))
		}
	}
	return errors.Join(errs...)
}
