package search

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foldrun-core/msa"
	"foldrun-core/template"
	"foldrun-core/tensor"
)

type fakeSearcher struct {
	calls []Request
	resp  func(Request) Response
	err   error
}

func (f *fakeSearcher) Search(_ context.Context, req Request) (Response, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return Response{}, f.err
	}
	if f.resp != nil {
		return f.resp(req), nil
	}
	out := Response{}
	for _, s := range req.Seqs {
		block := ">q\n" + s + "\n>hit\n" + s + "\n"
		if req.UsePairing {
			block = ">p\n" + s + "\n"
		}
		out.A3M = append(out.A3M, block)
	}
	return out, nil
}

type fakeFeaturizer struct{ names []string }

func (f fakeFeaturizer) Featurize(_ context.Context, _, _, seq string) (template.Features, error) {
	if len(f.names) == 0 {
		return template.Features{template.DomainNames: tensor.Strings{}}, nil
	}
	feat := template.Mock(len(seq), len(f.names))
	feat[template.DomainNames] = tensor.Strings(f.names)
	return feat, nil
}

func TestSingleSequence(t *testing.T) {
	resp, err := SingleSequence{}.Search(context.Background(), Request{Seqs: []string{"MKV", "GG"}})
	require.NoError(t, err)
	assert.Equal(t, []string{">101\nMKV", ">102\nGG"}, resp.A3M)
	assert.Nil(t, resp.TemplatePaths)
}

func TestResolveHeteromer(t *testing.T) {
	s := &fakeSearcher{}
	set := msa.Unique([]string{"MKV", "GG"})
	al, err := Resolve(context.Background(), s, nil, set, Options{MSAMode: MMseqs2UniRefEnv, PairMode: PairUnpairedPaired}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, s.calls, 2)
	assert.True(t, s.calls[0].UseEnv)
	assert.False(t, s.calls[0].UsePairing)
	assert.True(t, s.calls[1].UsePairing)
	assert.False(t, s.calls[1].UseEnv)
	assert.Len(t, al.Unpaired, 2)
	assert.Equal(t, []string{">p\nMKV\n", ">p\nGG\n"}, al.Paired)
	require.Len(t, al.Templates, 2)
	assert.NoError(t, template.Validate(al.Templates[1], 2))
}

func TestResolvePairModes(t *testing.T) {
	set := msa.Unique([]string{"MKV", "GG"})
	for _, tc := range []struct {
		mode             PairMode
		unpaired, paired bool
	}{
		{PairUnpaired, true, false},
		{PairPaired, false, true},
		{PairNone, true, false},
	} {
		al, err := Resolve(context.Background(), &fakeSearcher{}, nil, set, Options{MSAMode: MMseqs2UniRef, PairMode: tc.mode}, zerolog.Nop())
		require.NoError(t, err, tc.mode)
		assert.Equal(t, tc.unpaired, al.Unpaired != nil, tc.mode)
		assert.Equal(t, tc.paired, al.Paired != nil, tc.mode)
	}
}

func TestResolveSingleChainForcesNone(t *testing.T) {
	s := &fakeSearcher{}
	al, err := Resolve(context.Background(), s, nil, msa.Unique([]string{"MKV"}), Options{MSAMode: MMseqs2UniRef, PairMode: PairPaired}, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, s.calls, 1)
	assert.Nil(t, al.Paired)
	assert.Len(t, al.Unpaired, 1)
}

func TestResolveHomooligomer(t *testing.T) {
	s := &fakeSearcher{}
	al, err := Resolve(context.Background(), s, nil, msa.Unique([]string{"MKV", "MKV", "MKV"}), Options{MSAMode: MMseqs2UniRef, PairMode: PairUnpairedPaired}, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, s.calls, 1)
	assert.Equal(t, []string{">101\nMKV\n", ">102\nMKV\n", ">103\nMKV\n"}, al.Paired)
}

func TestResolveSingleSequenceMode(t *testing.T) {
	s := &fakeSearcher{}
	al, err := Resolve(context.Background(), s, nil, msa.Unique([]string{"MKV", "GG"}), Options{MSAMode: SingleSeq, PairMode: PairUnpairedPaired}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, s.calls)
	assert.Equal(t, []string{">101\nMKV", ">102\nGG"}, al.Unpaired)
	assert.Equal(t, []string{">101\nMKV", ">102\nGG"}, al.Paired)
}

func TestResolveTemplates(t *testing.T) {
	s := &fakeSearcher{resp: func(req Request) Response {
		r := Response{A3M: []string{">q\nMKV\n", ">q\nGG\n"}}
		if req.UseTemplates {
			r.TemplatePaths = []string{"/tmp/t0", ""}
		}
		return r
	}}
	set := msa.Unique([]string{"MKV", "GG"})
	opt := Options{MSAMode: MMseqs2UniRef, PairMode: PairUnpaired, UseTemplates: true}

	al, err := Resolve(context.Background(), s, fakeFeaturizer{names: []string{"1abc_A", "2xyz_B"}}, set, opt, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, tensor.Strings{"1abc_A", "2xyz_B"}, al.Templates[0].Strings(template.DomainNames))
	assert.Equal(t, tensor.Strings{"none"}, al.Templates[1].Strings(template.DomainNames))

	al, err = Resolve(context.Background(), s, fakeFeaturizer{}, set, opt, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, tensor.Strings{"none"}, al.Templates[0].Strings(template.DomainNames))
}

func TestResolveErrors(t *testing.T) {
	set := msa.Unique([]string{"MKV", "GG"})
	boom := errors.New("boom")
	_, err := Resolve(context.Background(), &fakeSearcher{err: boom}, nil, set, Options{PairMode: PairUnpaired}, zerolog.Nop())
	assert.ErrorIs(t, err, boom)

	short := &fakeSearcher{resp: func(Request) Response { return Response{A3M: []string{">q\nMKV\n"}} }}
	_, err = Resolve(context.Background(), short, nil, set, Options{PairMode: PairUnpaired}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrShortResponse)
}

func TestKeyIgnoresWorkdir(t *testing.T) {
	a := Key(Request{Seqs: []string{"MKV"}, Workdir: "/a"})
	b := Key(Request{Seqs: []string{"MKV"}, Workdir: "/b"})
	c := Key(Request{Seqs: []string{"MKV"}, UsePairing: true})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestLocal(t *testing.T) {
	dir := t.TempDir()
	req := Request{Seqs: []string{"MKV"}}

	_, err := Local{Dir: dir}.Search(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotFound)

	next := &fakeSearcher{}
	l := Local{Dir: dir, Next: next, Log: zerolog.Nop()}
	first, err := l.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := l.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, next.calls, 1)
	assert.FileExists(t, filepath.Join(dir, Key(req)+".json"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, Key(req)+".json"), []byte("{"), 0o644))
	_, err = l.Search(context.Background(), req)
	assert.Error(t, err)
}

func TestCached(t *testing.T) {
	next := &fakeSearcher{}
	c, err := NewCached(next, 16)
	require.NoError(t, err)
	defer c.Close()
	req := Request{Seqs: []string{"MKV"}}
	for i := 0; i < 3; i++ {
		resp, err := c.Search(context.Background(), req)
		require.NoError(t, err)
		assert.Len(t, resp.A3M, 1)
	}
	assert.Len(t, next.calls, 1)
}

func TestCachedHoldsManyResponses(t *testing.T) {
	next := &fakeSearcher{}
	c, err := NewCached(next, 256)
	require.NoError(t, err)
	defer c.Close()
	reqs := make([]Request, 20)
	for i := range reqs {
		reqs[i] = Request{Seqs: []string{strings.Repeat("M", i+1)}}
	}
	for round := 0; round < 2; round++ {
		for _, req := range reqs {
			_, err := c.Search(context.Background(), req)
			require.NoError(t, err)
		}
	}
	assert.Len(t, next.calls, len(reqs))
}

func TestCommand(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh")
	}
	c := Command{Argv: []string{"sh", "-c", `cat >/dev/null; printf '{"a3m":[">101\\nMKV\\n"],"template_paths":null}'`}}
	resp, err := c.Search(context.Background(), Request{Seqs: []string{"MKV"}})
	require.NoError(t, err)
	assert.Equal(t, []string{">101\nMKV\n"}, resp.A3M)
	assert.Nil(t, resp.TemplatePaths)

	_, err = c.Search(context.Background(), Request{Seqs: []string{"MKV", "GG"}})
	assert.ErrorIs(t, err, ErrShortResponse)

	tc := TemplateCommand{Argv: []string{"sh", "-c", `cat >/dev/null; printf '{"template_domain_names":["1abc_A"],"template_confidence_scores":{"shape":[1,3],"data":[1,1,1]}}'`}}
	f, err := tc.Featurize(context.Background(), ">q\nMKV\n", "/tmp", "MKV")
	require.NoError(t, err)
	assert.Equal(t, tensor.Strings{"1abc_A"}, f.Strings(template.DomainNames))
	assert.Equal(t, []int{1, 3}, f.Tensor(template.ConfidenceScores).Shape)
}
