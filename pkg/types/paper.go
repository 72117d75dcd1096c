// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Paper is a research paper record as stored in the literature database.
// Every field except Title is optional; an empty field means the value is
// absent and drives score penalties rather than errors.
//
// List-valued fields (Authors, Keywords, materials, organisms) are kept in
// their serialized form, either a JSON array or a comma-separated string,
// and decoded on demand. A malformed JSON array is reported by the decoding
// accessors.
type Paper struct {
	// ID is the database identifier of the paper.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the serialized author list.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Verification identifiers.
	DOI      string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID  string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	PubMedID string `json:"pubmed_id,omitempty" yaml:"pubmed_id,omitempty"`
	IEEEID   string `json:"ieee_id,omitempty" yaml:"ieee_id,omitempty"`

	// ExternalURL links to the publisher or preprint page.
	ExternalURL string `json:"external_url,omitempty" yaml:"external_url,omitempty"`

	// Keywords is the serialized keyword list.
	Keywords string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// SystemType is the bioelectrochemical system tag (MFC, MEC, MDC, MES, BES).
	SystemType string `json:"system_type,omitempty" yaml:"system_type,omitempty"`

	// PowerOutput is the reported power density in mW/m².
	PowerOutput *float64 `json:"power_output,omitempty" yaml:"power_output,omitempty"`

	// Efficiency is the reported (coulombic) efficiency in percent.
	Efficiency *float64 `json:"efficiency,omitempty" yaml:"efficiency,omitempty"`

	AnodeMaterials   string `json:"anode_materials,omitempty" yaml:"anode_materials,omitempty"`
	CathodeMaterials string `json:"cathode_materials,omitempty" yaml:"cathode_materials,omitempty"`
	OrganismTypes    string `json:"organism_types,omitempty" yaml:"organism_types,omitempty"`

	// Source is the provenance tag recording how the paper was ingested
	// (e.g. "crossref_api", "pubmed_api", "manual").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Volume  string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue   string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages   string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// PublicationDate is the publication date, if known.
	PublicationDate *time.Time `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
}

// HasVerificationID reports whether the paper carries a DOI, arXiv ID,
// PubMed ID, or IEEE ID.
func (p Paper) HasVerificationID() bool {
	return strings.TrimSpace(p.DOI) != "" ||
		strings.TrimSpace(p.ArxivID) != "" ||
		strings.TrimSpace(p.PubMedID) != "" ||
		strings.TrimSpace(p.IEEEID) != ""
}

// HasPerformanceData reports whether a power output or efficiency is present.
func (p Paper) HasPerformanceData() bool {
	return p.PowerOutput != nil || p.Efficiency != nil
}

// HasMaterialsData reports whether anode or cathode materials are recorded.
func (p Paper) HasMaterialsData() bool {
	return strings.TrimSpace(p.AnodeMaterials) != "" || strings.TrimSpace(p.CathodeMaterials) != ""
}

// AuthorList decodes the serialized author list.
func (p Paper) AuthorList() ([]string, error) {
	list, err := DecodeList(p.Authors)
	if err != nil {
		return nil, fmt.Errorf("authors: %w", err)
	}
	return list, nil
}

// KeywordList decodes the serialized keyword list.
func (p Paper) KeywordList() ([]string, error) {
	list, err := DecodeList(p.Keywords)
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	return list, nil
}

// DecodeList parses a serialized list. Text starting with '[' must be a JSON
// array of strings; anything else is split on commas. Blank entries are
// dropped.
func DecodeList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var items []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("malformed JSON list: %w", err)
		}
	} else {
		items = strings.Split(raw, ",")
	}

	out := items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// EncodeList serializes a list as a JSON array. A nil or empty list encodes
// to the empty string.
func EncodeList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	data, _ := json.Marshal(items)
	return string(data)
}
