package summary

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// FacetRow is one "type:source" counter split into its parts.
type FacetRow struct {
	Type   string `json:"type"`
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// SpecialtyGenes splits each "type:source" key on the first colon, then
// orders rows by type and, within a type, by source. Keys without a colon
// keep the whole key as type and an empty source.
func SpecialtyGenes(src gjson.Result) []FacetRow {
	var rows []FacetRow
	src.ForEach(func(key, value gjson.Result) bool {
		typ, source, _ := strings.Cut(key.String(), ":")
		rows = append(rows, FacetRow{
			Type:   strings.TrimSpace(typ),
			Source: strings.TrimSpace(source),
			Count:  Count(value),
		})
		return true
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Type != rows[j].Type {
			return rows[i].Type < rows[j].Type
		}
		return rows[i].Source < rows[j].Source
	})
	return rows
}

// AMR lists antibiotics by observed phenotype.
type AMR struct {
	Resistant    []string `json:"resistant"`
	Susceptible  []string `json:"susceptible"`
	Intermediate []string `json:"intermediate"`
}

func (a AMR) Empty() bool {
	return len(a.Resistant) == 0 && len(a.Susceptible) == 0 && len(a.Intermediate) == 0
}

// Phenotypes groups a classifications array of {name, sensitivity} by
// sensitivity. Names are de-duplicated and sorted; unknown sensitivities
// are ignored.
func Phenotypes(classifications gjson.Result) AMR {
	groups := map[string]map[string]struct{}{}
	classifications.ForEach(func(_, item gjson.Result) bool {
		name := strings.TrimSpace(item.Get("name").String())
		sens := strings.ToLower(strings.TrimSpace(item.Get("sensitivity").String()))
		if name == "" || sens == "" {
			return true
		}
		if groups[sens] == nil {
			groups[sens] = map[string]struct{}{}
		}
		groups[sens][name] = struct{}{}
		return true
	})
	return AMR{
		Resistant:    sortedKeys(groups["resistant"]),
		Susceptible:  sortedKeys(groups["susceptible"]),
		Intermediate: sortedKeys(groups["intermediate"]),
	}
}

// AMRGeneRow is one resistance mechanism with the genes annotated for it.
type AMRGeneRow struct {
	Mechanism string   `json:"mechanism"`
	Genes     []string `json:"genes"`
}

// AMRGenes reads amr_gene_summary, which is either an object of
// mechanism → genes (array or comma separated string) or an array of
// {mechanism, genes} objects. Rows are sorted by mechanism.
func AMRGenes(src gjson.Result) []AMRGeneRow {
	var rows []AMRGeneRow
	add := func(mechanism string, genes gjson.Result) {
		mechanism = strings.TrimSpace(mechanism)
		if mechanism == "" {
			return
		}
		rows = append(rows, AMRGeneRow{Mechanism: mechanism, Genes: geneList(genes)})
	}
	switch {
	case src.IsObject():
		src.ForEach(func(key, value gjson.Result) bool {
			add(key.String(), value)
			return true
		})
	case src.IsArray():
		src.ForEach(func(_, item gjson.Result) bool {
			mech := item.Get("mechanism")
			if !mech.Exists() {
				mech = item.Get("name")
			}
			add(mech.String(), item.Get("genes"))
			return true
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Mechanism < rows[j].Mechanism })
	return rows
}

func geneList(v gjson.Result) []string {
	var out []string
	switch {
	case v.IsArray():
		for _, g := range v.Array() {
			if s := strings.TrimSpace(g.String()); s != "" {
				out = append(out, s)
			}
		}
	case v.Type == gjson.String:
		for _, g := range strings.Split(v.Str, ",") {
			if s := strings.TrimSpace(g); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
