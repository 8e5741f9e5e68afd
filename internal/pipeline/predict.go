// internal/pipeline/predict.go
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"foldrun-core/features"
	"foldrun-core/protein"
	"foldrun/internal/metric"
	"foldrun/internal/predictor"
	"foldrun/internal/relax"
)

// RankBy is the score models are ordered by.
type RankBy string

const (
	RankAuto  RankBy = "auto"
	RankPLDDT RankBy = "plddt"
	RankPTM   RankBy = "ptmscore"
)

// Resolve turns auto into pLDDT for one chain and pTM for complexes.
func (r RankBy) Resolve(numChains int) RankBy {
	if r != RankAuto && r != "" {
		return r
	}
	if numChains == 1 {
		return RankPLDDT
	}
	return RankPTM
}

// PredictOptions configures PredictStructure for one job.
type PredictOptions struct {
	// IsComplex is the run-level flag: fixed-size batching applies to
	// monomer models of runs without complexes, and residue numbering of
	// monomer-model complexes restarts per chain.
	IsComplex    bool
	ModelType    features.ModelType
	UseTemplates bool
	// Lengths are the per-chain lengths of the job.
	Lengths     []int
	CropLen     int
	RankBy      RankBy
	Seed        int64
	StopAtScore float64
	Relaxer     relax.Relaxer
}

// ModelOutput is one ranked model of a job.
type ModelOutput struct {
	Model     string
	Rank      int
	MeanPLDDT float64
	PLDDT     []float64
	PAE       [][]float64
	PTM       float64
	Duration  time.Duration
	Unrelaxed string
	Relaxed   string
}

func (o ModelOutput) score(by RankBy) float64 {
	if by == RankPTM {
		return o.PTM
	}
	return o.MeanPLDDT
}

// PredictStructure runs each runner in order on f, stopping early once a
// model's mean pLDDT exceeds StopAtScore, and returns the outputs ranked
// best first.
func PredictStructure(ctx context.Context, f features.Dict, runners []predictor.Runner, opt PredictOptions, log zerolog.Logger, m *metric.Client) ([]ModelOutput, error) {
	if m == nil {
		m = metric.Nop()
	}
	seqLen := 0
	for _, l := range opt.Lengths {
		seqLen += l
	}
	rankBy := opt.RankBy.Resolve(len(opt.Lengths))
	fixed := !opt.IsComplex && opt.ModelType == features.ModelPTM

	var outs []ModelOutput
	for _, r := range runners {
		log.Info().Str("model", r.Name).Msg("running model")
		out, err := runModel(ctx, f, r, opt, fixed, seqLen)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, err)
		}
		log.Info().Str("model", r.Name).
			Str("took", out.Duration.Round(100*time.Millisecond).String()).
			Float64("plddt", out.MeanPLDDT).
			Float64("ptm", out.PTM).
			Msg("model done")
		m.Timing(metric.ModelDuration, out.Duration, metric.Tag(metric.TagModel, r.Name))
		m.Gauge(metric.MeanPLDDT, out.MeanPLDDT, metric.Tag(metric.TagModel, r.Name))

		if opt.Relaxer != nil {
			relaxed, err := opt.Relaxer.Relax(ctx, out.Unrelaxed)
			if err != nil {
				return nil, fmt.Errorf("%s: relax: %w", r.Name, err)
			}
			out.Relaxed = relaxed
		}
		outs = append(outs, out)
		if out.MeanPLDDT > opt.StopAtScore {
			log.Info().Str("model", r.Name).Float64("stop_at_score", opt.StopAtScore).Msg("score reached, skipping remaining models")
			break
		}
	}

	log.Info().Str("rank_by", string(rankBy)).Msg("reranking models")
	Rank(outs, rankBy)
	return outs, nil
}

// Rank orders outs best first by the given score and numbers them from 1.
// Ties keep run order.
func Rank(outs []ModelOutput, by RankBy) {
	sort.SliceStable(outs, func(i, j int) bool { return outs[i].score(by) > outs[j].score(by) })
	for i := range outs {
		outs[i].Rank = i + 1
	}
}

func runModel(ctx context.Context, f features.Dict, r predictor.Runner, opt PredictOptions, fixed bool, seqLen int) (ModelOutput, error) {
	p := r.Predictor
	if err := p.SetParams(ctx, r.Name); err != nil {
		return ModelOutput{}, err
	}
	in, err := p.ProcessFeatures(ctx, f, opt.Seed)
	if err != nil {
		return ModelOutput{}, fmt.Errorf("process features: %w", err)
	}
	if fixed {
		eval := p.Config().Eval
		in = predictor.FixedSize(in, eval.Feat, predictor.BatchSizes(eval, r.Name, opt.CropLen, opt.UseTemplates))
	}

	start := time.Now()
	res, err := p.Predict(ctx, in)
	if err != nil {
		return ModelOutput{}, err
	}
	out := ModelOutput{Model: r.Name, PTM: res.PTM, Duration: time.Since(start)}

	if len(res.PLDDT) < seqLen {
		return ModelOutput{}, fmt.Errorf("prediction has %d pLDDT values for %d residues", len(res.PLDDT), seqLen)
	}
	out.PLDDT = append([]float64(nil), res.PLDDT[:seqLen]...)
	for _, v := range out.PLDDT {
		out.MeanPLDDT += v
	}
	if seqLen > 0 {
		out.MeanPLDDT /= float64(seqLen)
	}
	if len(res.PAE) >= seqLen {
		out.PAE = make([][]float64, seqLen)
		for i := range out.PAE {
			row := res.PAE[i]
			out.PAE[i] = append([]float64(nil), row[:min(seqLen, len(row))]...)
		}
	}

	prot, err := protein.FromFeatures(f, protein.Prediction{Positions: res.Positions, AtomMask: res.AtomMask, PLDDT: res.PLDDT})
	if err != nil {
		return ModelOutput{}, err
	}
	if opt.IsComplex && opt.ModelType == features.ModelPTM {
		prot.RestartNumbering()
	}
	if out.Unrelaxed, err = protein.ToPDB(prot); err != nil {
		return ModelOutput{}, err
	}
	return out, nil
}
