// pkg/api/run_v1.go
package api

// RunConfigV1 is the run summary written as config.json next to the results.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type RunConfigV1 struct {
	RunID            string  `json:"run_id"`
	NumQueries       int     `json:"num_queries"`
	UseTemplates     bool    `json:"use_templates"`
	UseAmber         bool    `json:"use_amber"`
	MSAMode          string  `json:"msa_mode"`
	ModelType        string  `json:"model_type"`
	NumModels        int     `json:"num_models"`
	NumRecycles      int     `json:"num_recycles"`
	ModelOrder       []int   `json:"model_order"`
	KeepExisting     bool    `json:"keep_existing_results"`
	RankMode         string  `json:"rank_mode"`
	PairMode         string  `json:"pair_mode"`
	PredictorURL     string  `json:"host_url"`
	StopAtScore      float64 `json:"stop_at_score"`
	RecompilePadding float64 `json:"recompile_padding"`
	Commit           string  `json:"commit"`
	Version          string  `json:"version"`
}
