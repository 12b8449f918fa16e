package dataapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func fakeAPI(t *testing.T, wikiHasSpecies bool) (*httptest.Server, *[]string) {
	t.Helper()
	var auth []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/genome/", func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"genome_id": "1.1", "genome_name": "Example coli K12", "species": "Example coli",
			"genus": "Example", "cds": 100, "missing_core_family_ids": ["PGF_2", "PGF_1"]}]`))
	})
	mux.HandleFunc("/api/genome_feature/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.RawQuery
		switch {
		case strings.Contains(q, "pivot,(annotation,feature_type)"):
			_, _ = w.Write([]byte(`{"facet_counts": {"facet_pivot": {"annotation,feature_type": [
				{"value": "RefSeq", "pivot": [{"value": "CDS", "count": 1}]},
				{"value": "PATRIC", "pivot": [{"value": "CDS", "count": 98}, {"value": "tRNA", "count": 40}, {"value": "rRNA", "count": 6}]}
			]}}}`))
		case strings.Contains(q, "hypothetical"):
			_, _ = w.Write([]byte(`{"facet_counts": {"facet_fields": {"annotation": {"PATRIC": 30}}}}`))
		default:
			_, _ = w.Write([]byte(`{"facet_counts": {"facet_fields": {"annotation": {"PATRIC": 12}}}}`))
		}
	})
	mux.HandleFunc("/api/sp_gene/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"facet_counts": {"facet_fields": {"property_source": {"Virulence Factor: VFDB": 4}}}}`))
	})
	mux.HandleFunc("/api/subsystem/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"facets": {"stat": {"buckets": [
			{"val": "Metabolism", "count": 50, "subsystem_count": 9, "gene_count": 45},
			{"val": "Energy", "count": 10, "subsystem_count": 2}
		]}}}`))
	})
	mux.HandleFunc("/api/genome_amr/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"facet_counts": {"facet_pivot": {"resistant_phenotype,laboratory_typing_method,antibiotic": [
			{"value": "Resistant", "pivot": [{"value": "MIC", "pivot": [{"value": "ampicillin"}, {"value": "ampicillin"}]}]},
			{"value": "Susceptible", "pivot": [{"value": "Disk", "pivot": [{"value": "gentamicin"}]}]}
		]}}}`))
	})
	mux.HandleFunc("/api/protein_family_ref/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	mux.HandleFunc("/wiki", func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("titles")
		if r.URL.Query().Get("prop") == "pageimages" {
			_, _ = w.Write([]byte(`{"query": {"pages": [{"thumbnail": {"source": "https://img/` + title + `.png"}}]}}`))
			return
		}
		if title == "Example coli" && !wikiHasSpecies {
			_, _ = w.Write([]byte(`{"query": {"pages": [{"missing": true}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"query": {"pages": [{"extract": "<p>About ` + title + `</p>"}]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &auth
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{DataURL: srv.URL + "/api/", WikiURL: srv.URL + "/wiki", Token: "tok"})
}

func TestAggregate(t *testing.T) {
	srv, auth := fakeAPI(t, true)
	doc, err := newTestClient(srv).Aggregate(context.Background(), "1.1")
	require.NoError(t, err)

	assert.Equal(t, "Example coli K12", doc.ScientificName)
	assert.Equal(t, map[string]int64{"cds": 98, "tRNA": 40, "rRNA": 6}, doc.Quality.FeatureSummary)
	assert.EqualValues(t, 30, doc.Quality.ProteinSummary["hypothetical"])
	assert.EqualValues(t, 70, doc.Quality.ProteinSummary["function"])
	assert.EqualValues(t, 12, doc.Quality.ProteinSummary["ec_assignment"])
	assert.Equal(t, SubsystemCount{SubsystemCount: 9, GeneCount: 45}, doc.Quality.SubsystemSummary["Metabolism"])
	assert.Equal(t, SubsystemCount{SubsystemCount: 2, GeneCount: 10}, doc.Quality.SubsystemSummary["Energy"])
	assert.Equal(t, []Classification{
		{Name: "ampicillin", Sensitivity: "resistant"},
		{Name: "gentamicin", Sensitivity: "susceptible"},
	}, doc.Classifications)
	assert.Nil(t, doc.ProteinFamilies)
	require.NotNil(t, doc.Wiki)
	assert.Equal(t, "Example coli", doc.Wiki.Title)
	assert.Equal(t, "https://img/Example coli.png", doc.Wiki.ImageSource)
	assert.Equal(t, []string{"tok"}, *auth)

	raw, err := doc.Marshal()
	require.NoError(t, err)
	parsed := gjson.ParseBytes(raw)
	assert.EqualValues(t, 98, parsed.Get("genome_quality_measure.feature_summary.cds").Int())
	assert.Equal(t, "Example", parsed.Get("meta.genus").String())
}

func TestWikiFallsBackToGenus(t *testing.T) {
	srv, _ := fakeAPI(t, false)
	w, err := newTestClient(srv).Wiki(context.Background(), "Example coli", "Example")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "Example", w.Title)
	assert.Equal(t, "<p>About Example</p>", w.Text)
}

func TestGenomeMetaNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(Options{DataURL: srv.URL}).Aggregate(context.Background(), "9.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStatusErrorsAreReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(Options{DataURL: srv.URL}).GenomeMeta(context.Background(), "1.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "nope")
}

func TestWithTokenOverrides(t *testing.T) {
	c := NewClient(Options{Token: "a"})
	assert.Equal(t, "b", c.WithToken("b").token)
	assert.Equal(t, "a", c.WithToken(" ").token)
	assert.Equal(t, "a", c.token)
}
