// pkg/api/scores_v1.go
package api

// ScoresV1 is the stable JSON schema of one model's confidence scores.
// PAE is truncated to the real sequence length.
type ScoresV1 struct {
	JobName   string      `json:"job_name"`
	Model     string      `json:"model"`
	Rank      int         `json:"rank"`
	MeanPLDDT float64     `json:"mean_plddt"`
	PTM       float64     `json:"ptm"`
	PLDDT     []float64   `json:"plddt"`
	PAE       [][]float64 `json:"pae"`
	Seconds   float64     `json:"seconds,omitempty"`
}
