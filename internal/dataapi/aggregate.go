package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"genomereport/internal/logger"

	"github.com/tidwall/gjson"
)

// Quality mirrors genome_quality_measure of a genome object.
type Quality struct {
	FeatureSummary       map[string]int64          `json:"feature_summary"`
	ProteinSummary       map[string]int64          `json:"protein_summary"`
	SpecialtyGeneSummary map[string]int64          `json:"specialty_gene_summary"`
	SubsystemSummary     map[string]SubsystemCount `json:"subsystem_summary"`
}

// Document is the aggregated per-genome JSON written to the workspace.
type Document struct {
	ID              string           `json:"id"`
	ScientificName  string           `json:"scientific_name"`
	Meta            json.RawMessage  `json:"meta"`
	Quality         Quality          `json:"genome_quality_measure"`
	Classifications []Classification `json:"classifications"`
	ProteinFamilies []ProteinFamily  `json:"protein_families,omitempty"`
	Wiki            *Wiki            `json:"wiki,omitempty"`
	FetchedAt       time.Time        `json:"fetched_at"`
}

// Aggregate fetches everything one report needs, in order. The genome
// record and the summary counters are required; AMR, protein families and
// the wiki blurb are optional and only logged when they fail.
func (c *Client) Aggregate(ctx context.Context, genomeID string) (*Document, error) {
	genomeID = strings.TrimSpace(genomeID)
	if genomeID == "" {
		return nil, fmt.Errorf("genome id is required")
	}
	logger.Infof("fetching genome meta for %s", genomeID)
	meta, err := c.GenomeMeta(ctx, genomeID)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		ID:             genomeID,
		ScientificName: meta.Get("genome_name").String(),
		Meta:           json.RawMessage(meta.Raw),
		FetchedAt:      time.Now().UTC(),
	}

	logger.Infof("fetching annotation meta")
	if doc.Quality.FeatureSummary, err = c.FeatureCounts(ctx, genomeID); err != nil {
		return nil, err
	}
	logger.Infof("fetching specialty genes")
	if doc.Quality.SpecialtyGeneSummary, err = c.SpecialtyGenes(ctx, genomeID); err != nil {
		return nil, err
	}
	cds := meta.Get("cds").Int()
	if cds == 0 {
		cds = doc.Quality.FeatureSummary["cds"]
	}
	logger.Infof("fetching protein features")
	if doc.Quality.ProteinSummary, err = c.ProteinCounts(ctx, genomeID, cds); err != nil {
		return nil, err
	}
	logger.Infof("fetching subsystem data")
	if doc.Quality.SubsystemSummary, err = c.Subsystems(ctx, genomeID); err != nil {
		return nil, err
	}

	if doc.Classifications, err = c.AMR(ctx, genomeID); err != nil {
		logger.Warnf("skipping AMR phenotypes: %v", err)
	}
	if doc.Classifications == nil {
		doc.Classifications = []Classification{}
	}
	if ids := stringList(meta.Get("missing_core_family_ids")); len(ids) > 0 {
		if doc.ProteinFamilies, err = c.ProteinFamilies(ctx, ids); err != nil {
			logger.Warnf("skipping protein families: %v", err)
		}
	}
	if doc.Wiki, err = c.Wiki(ctx, meta.Get("species").String(), meta.Get("genus").String()); err != nil {
		logger.Warnf("skipping wiki summary: %v", err)
	}
	return doc, nil
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}

func stringList(v gjson.Result) []string {
	var out []string
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
