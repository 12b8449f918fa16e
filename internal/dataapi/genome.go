package dataapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// GenomeMeta returns the genome record. A missing record is an error.
func (c *Client) GenomeMeta(ctx context.Context, genomeID string) (gjson.Result, error) {
	res, err := c.getData(ctx, "genome", fmt.Sprintf("/genome/?eq(genome_id,%s)&select(*)", genomeID))
	if err != nil {
		return gjson.Result{}, err
	}
	first := res.Get("0")
	if !first.IsObject() {
		return gjson.Result{}, fmt.Errorf("genome %s not found", genomeID)
	}
	return first, nil
}

// FeatureCounts pivots annotated features by type for the PATRIC annotation.
// Feature types are keyed as in feature_summary (CDS becomes cds).
func (c *Client) FeatureCounts(ctx context.Context, genomeID string) (map[string]int64, error) {
	q := fmt.Sprintf("/genome_feature/?eq(genome_id,%s)&limit(1)"+
		"&in(annotation,(PATRIC,RefSeq))&ne(feature_type,source)"+
		"&facet((pivot,(annotation,feature_type)),(mincount,0))"+solrAccept, genomeID)
	res, err := c.getData(ctx, "annotation", q)
	if err != nil {
		return nil, err
	}
	pivots := child(res.Get("facet_counts.facet_pivot"), "annotation,feature_type").Array()
	if len(pivots) == 0 {
		return map[string]int64{}, nil
	}
	chosen := pivots[0]
	for _, p := range pivots {
		if p.Get("value").String() == "PATRIC" {
			chosen = p
			break
		}
	}
	out := map[string]int64{}
	chosen.Get("pivot").ForEach(func(_, item gjson.Result) bool {
		name := strings.TrimSpace(item.Get("value").String())
		if name == "" {
			return true
		}
		if name == "CDS" {
			name = "cds"
		}
		out[name] = item.Get("count").Int()
		return true
	})
	return out, nil
}

// SpecialtyGenes returns property_source facet counts ("type: source" → n).
func (c *Client) SpecialtyGenes(ctx context.Context, genomeID string) (map[string]int64, error) {
	q := fmt.Sprintf("/sp_gene/?eq(genome_id,%s)&limit(1)"+
		"&facet((field,property_source),(mincount,1))&json(nl,map)"+solrAccept, genomeID)
	res, err := c.getData(ctx, "specialty genes", q)
	if err != nil {
		return nil, err
	}
	out := map[string]int64{}
	res.Get("facet_counts.facet_fields.property_source").ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.Int()
		return true
	})
	return out, nil
}

var proteinQueries = []struct {
	key    string
	filter string
}{
	{"hypothetical", "and(eq(product,hypothetical+protein),eq(feature_type,CDS))"},
	{"go_assignment", "eq(go,*)"},
	{"pathway_assignment", "eq(pathway,*)"},
	{"pgfam_assignment", "eq(pgfam_id,PGF*)"},
	{"plfam_assignment", "eq(plfam_id,PLF*)"},
	{"ec_assignment", "eq(ec,*)"},
}

// ProteinCounts runs one facet query per protein counter. Proteins with
// functional assignments are the CDS count minus the hypothetical ones.
func (c *Client) ProteinCounts(ctx context.Context, genomeID string, cds int64) (map[string]int64, error) {
	out := map[string]int64{}
	for _, pq := range proteinQueries {
		q := fmt.Sprintf("/genome_feature/?eq(genome_id,%s)&%s&in(annotation,(PATRIC,RefSeq))&limit(1)"+
			"&facet((field,annotation),(mincount,1))&json(nl,map)"+solrAccept, genomeID, pq.filter)
		res, err := c.getData(ctx, "protein "+pq.key, q)
		if err != nil {
			return nil, err
		}
		out[pq.key] = res.Get("facet_counts.facet_fields.annotation.PATRIC").Int()
	}
	if fn := cds - out["hypothetical"]; fn > 0 {
		out["function"] = fn
	} else {
		out["function"] = 0
	}
	return out, nil
}

// SubsystemCount is one superclass of the subsystem summary.
type SubsystemCount struct {
	SubsystemCount int64 `json:"subsystem_count"`
	GeneCount      int64 `json:"gene_count"`
}

// Subsystems facets subsystems by superclass.
func (c *Client) Subsystems(ctx context.Context, genomeID string) (map[string]SubsystemCount, error) {
	facet := `{"stat":{"type":"field","field":"superclass","limit":-1,"facet":{"subsystem_count":"unique(subsystem_id)","gene_count":"unique(feature_id)"}}}`
	q := fmt.Sprintf("/subsystem/?eq(genome_id,%s)"+
		"&group((field,subsystem_id),(format,simple),(ngroups,true),(limit,1),(facet,true))"+
		"&json(facet,%s)"+solrAccept, genomeID, queryEscape(facet))
	res, err := c.getData(ctx, "subsystems", q)
	if err != nil {
		return nil, err
	}
	out := map[string]SubsystemCount{}
	res.Get("facets.stat.buckets").ForEach(func(_, b gjson.Result) bool {
		name := strings.TrimSpace(b.Get("val").String())
		genes := b.Get("gene_count")
		if !genes.Exists() {
			genes = b.Get("count")
		}
		out[name] = SubsystemCount{
			SubsystemCount: b.Get("subsystem_count").Int(),
			GeneCount:      genes.Int(),
		}
		return true
	})
	return out, nil
}

// Classification is one antibiotic phenotype.
type Classification struct {
	Name        string `json:"name"`
	Sensitivity string `json:"sensitivity"`
}

// AMR pivots lab-typed phenotypes into classifications.
func (c *Client) AMR(ctx context.Context, genomeID string) ([]Classification, error) {
	q := fmt.Sprintf("/genome_amr/?eq(genome_id,%s)&limit(1)"+
		"&facet((pivot,(resistant_phenotype,laboratory_typing_method,antibiotic)),(mincount,1))"+
		"&json(nl,map)"+solrAccept, genomeID)
	res, err := c.getData(ctx, "amr", q)
	if err != nil {
		return nil, err
	}
	var out []Classification
	seen := map[Classification]bool{}
	pivot := child(res.Get("facet_counts.facet_pivot"), "resistant_phenotype,laboratory_typing_method,antibiotic")
	pivot.ForEach(func(_, phenotype gjson.Result) bool {
		sens := strings.ToLower(strings.TrimSpace(phenotype.Get("value").String()))
		phenotype.Get("pivot").ForEach(func(_, method gjson.Result) bool {
			method.Get("pivot").ForEach(func(_, drug gjson.Result) bool {
				cl := Classification{Name: strings.TrimSpace(drug.Get("value").String()), Sensitivity: sens}
				if cl.Name != "" && sens != "" && !seen[cl] {
					seen[cl] = true
					out = append(out, cl)
				}
				return true
			})
			return true
		})
		return true
	})
	return out, nil
}

// ProteinFamily is a reference protein family.
type ProteinFamily struct {
	FamilyID      string `json:"family_id"`
	FamilyProduct string `json:"family_product"`
}

// ProteinFamilies looks up the given family IDs, sorted by ID.
func (c *Client) ProteinFamilies(ctx context.Context, ids []string) ([]ProteinFamily, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := fmt.Sprintf("/protein_family_ref/?in(family_id,(%s))&sort(+family_id)&select(*)", strings.Join(ids, ","))
	res, err := c.getData(ctx, "protein families", q)
	if err != nil {
		return nil, err
	}
	var out []ProteinFamily
	res.ForEach(func(_, item gjson.Result) bool {
		out = append(out, ProteinFamily{
			FamilyID:      item.Get("family_id").String(),
			FamilyProduct: item.Get("family_product").String(),
		})
		return true
	})
	return out, nil
}
