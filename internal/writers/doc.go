// Package writers lays out the result directory of a run.
//
// Per job: ranked structures (<job>_unrelaxed_<model>_rank_<n>.pdb and the
// _relaxed_ twin), score JSON next to each unrelaxed structure, the
// serialized alignment <job>.a3m, and a completion marker: <job>.done.txt or
// the bundle <job>.result.zip. Per run: config.json and cite.bibtex.
// JSON goes through pkg/api (v1) for a stable format.
package writers
