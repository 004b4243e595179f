package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgate/internal/rules"
)

const baselineForm = `
export function validateEmail(email) {
  if (!email || email.length === 0) {
    throw new Error('email required');
  }
  return email.includes('@');
}

export function Form() {
  const [email, setEmail] = useState('');
  return <input onChange={e => setEmail(e.target.value)} onBlur={check} />;
}
`

func newVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := New(DefaultOptions())
	require.NoError(t, err)
	return v
}

func pairOf(baseline, candidate string) Pair {
	return Pair{
		Baseline:  Artifact{ID: "baseline.jsx", Source: []byte(baseline)},
		Candidate: Artifact{ID: "candidate.jsx", Source: []byte(candidate)},
	}
}

func TestVerifyPair_IdenticalSource(t *testing.T) {
	v := newVerifier(t)

	rep, err := v.VerifyPair(context.Background(), pairOf(baselineForm, baselineForm))
	require.NoError(t, err)
	require.NotNil(t, rep.Verdict)

	assert.True(t, rep.Verdict.Preserved)
	assert.True(t, rep.Verdict.FunctionsPreserved)
	assert.True(t, rep.Verdict.EventHandlersPreserved)
	assert.True(t, rep.Verdict.ValidationLogicPreserved)
	assert.True(t, rep.Verdict.StateManagementPreserved)
	assert.True(t, rep.Verdict.SemanticEquivalence)
	assert.True(t, rep.Passed())
}

func TestVerifyPair_WhitespaceOnlyChange(t *testing.T) {
	v := newVerifier(t)

	reformatted := `
export function validateEmail(email) {
  if (!email || email.length === 0) { throw new Error('email required'); }
  return email.includes('@');
}

export function Form() {
  const [email, setEmail] = useState('');
  return <input onChange={e => setEmail(e.target.value)}  onBlur={check} />;
}
`
	rep, err := v.VerifyPair(context.Background(), pairOf(baselineForm, reformatted))
	require.NoError(t, err)
	require.NotNil(t, rep.Verdict)

	assert.True(t, rep.Verdict.Preserved, "formatting changes are not semantic changes")
}

func TestVerifyPair_RemovedFunction(t *testing.T) {
	v := newVerifier(t)

	stripped := `
export function Form() {
  const [email, setEmail] = useState('');
  return <input onChange={e => setEmail(e.target.value)} onBlur={check} />;
}
`
	rep, err := v.VerifyPair(context.Background(), pairOf(baselineForm, stripped))
	require.NoError(t, err)
	require.NotNil(t, rep.Verdict)

	assert.False(t, rep.Verdict.Preserved)
	assert.False(t, rep.Verdict.FunctionsPreserved)
	assert.Contains(t, rep.Verdict.MissingFunctions, "validateEmail")
	assert.Contains(t, rep.Verdict.MissingExports, "validateEmail")
	assert.False(t, rep.Passed())
}

func TestVerifyPair_RemovedNestedDuplicate(t *testing.T) {
	v := newVerifier(t)

	baseline := `
export function formatPrice(value) {
  const helper = (n) => n.toFixed(2);
  return helper(value);
}

export function formatDate(value) {
  const helper = (n) => new Date(n).toISOString();
  return helper(value);
}
`
	candidate := `
export function formatPrice(value) {
  const helper = (n) => n.toFixed(2);
  return helper(value);
}

export function formatDate(value) {
  return new Date(value).toISOString();
}
`
	rep, err := v.VerifyPair(context.Background(), pairOf(baseline, candidate))
	require.NoError(t, err)
	require.NotNil(t, rep.Verdict)

	assert.False(t, rep.Verdict.FunctionsPreserved,
		"a helper sharing its name with one in another unit is still tracked")
	assert.Contains(t, rep.Verdict.MissingFunctions, "formatDate.helper")
	assert.NotContains(t, rep.Verdict.MissingFunctions, "formatPrice.helper")
	assert.False(t, rep.Verdict.Preserved)
}

func TestVerifyPair_RemovedEventBinding(t *testing.T) {
	v := newVerifier(t)

	noBlur := `
export function validateEmail(email) {
  if (!email || email.length === 0) {
    throw new Error('email required');
  }
  return email.includes('@');
}

export function Form() {
  const [email, setEmail] = useState('');
  return <input onChange={e => setEmail(e.target.value)} />;
}
`
	rep, err := v.VerifyPair(context.Background(), pairOf(baselineForm, noBlur))
	require.NoError(t, err)
	require.NotNil(t, rep.Verdict)

	assert.False(t, rep.Verdict.EventHandlersPreserved)
	assert.Equal(t, []string{"onBlur"}, rep.Verdict.Detection.MissingEventHandlers)
	assert.False(t, rep.Verdict.Preserved)
}

func TestVerifyPair_ParseFailure(t *testing.T) {
	v := newVerifier(t)

	rep, err := v.VerifyPair(context.Background(), pairOf(baselineForm, "function broken( {"))
	require.NoError(t, err, "a syntax error is a verdict, not an infrastructure failure")

	assert.True(t, rep.Failed())
	assert.Nil(t, rep.Verdict)
	assert.Contains(t, rep.ParseError, "candidate.jsx")
}

func TestVerifyBatch(t *testing.T) {
	v := newVerifier(t)

	pairs := []Pair{
		pairOf(baselineForm, baselineForm),
		{
			Baseline:  Artifact{ID: "util.js", Source: []byte(`export function twice(n) { return n * 2; }`)},
			Candidate: Artifact{ID: "util.out.js", Source: []byte(`export function twice(n) { return n + n; }`)},
		},
		{
			Baseline:  Artifact{ID: "bad.js", Source: []byte(`function ok() { return 1; }`)},
			Candidate: Artifact{ID: "bad.out.js", Source: []byte(`function broken( {`)},
		},
	}

	batch, crossRules, err := v.VerifyBatch(context.Background(), pairs)
	require.NoError(t, err)
	require.NotNil(t, crossRules)

	assert.Equal(t, 2, batch.PairsVerified)
	assert.Equal(t, 1, batch.PairsFailed)
	assert.Len(t, batch.Reports, 3)
	assert.False(t, batch.Passed(), "a parse failure fails the batch")

	t.Run("Parse failure does not poison other pairs", func(t *testing.T) {
		assert.True(t, batch.Reports[0].Passed())
	})

	t.Run("Equivalent rewrite is preserved", func(t *testing.T) {
		rep := batch.Reports[1]
		require.NotNil(t, rep.Verdict)
		assert.True(t, rep.Verdict.SemanticEquivalence)
	})
}

func TestVerifyBatch_Cancellation(t *testing.T) {
	v := newVerifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := v.VerifyBatch(ctx, []Pair{pairOf(baselineForm, baselineForm)})
	assert.Error(t, err)
}

func TestNew_InvalidRuleConfig(t *testing.T) {
	opts := DefaultOptions()
	opts.Rules = rules.Config{DisabledRules: []string{"no-such-rule"}}

	_, err := New(opts)
	require.Error(t, err)
	var cfgErr *rules.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_Memoization(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()

	artifact := Artifact{ID: "same.js", Source: []byte(`function f() { return 1; }`)}
	first, err := v.load(ctx, artifact)
	require.NoError(t, err)
	second, err := v.load(ctx, artifact)
	require.NoError(t, err)

	assert.Same(t, first, second, "identical content is parsed once")

	changed := Artifact{ID: "same.js", Source: []byte(`function f() { return 2; }`)}
	third, err := v.load(ctx, changed)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "content change invalidates the memo")
}

func TestLoad_EvictionReparses(t *testing.T) {
	opts := DefaultOptions()
	opts.CacheSize = 1
	v, err := New(opts)
	require.NoError(t, err)
	defer v.Close()
	ctx := context.Background()

	first := Artifact{ID: "a.js", Source: []byte(`function a() { return 1; }`)}
	second := Artifact{ID: "b.js", Source: []byte(`function b() { return 2; }`)}

	original, err := v.load(ctx, first)
	require.NoError(t, err)

	// Loading a second artifact evicts the first and releases its tree.
	_, err = v.load(ctx, second)
	require.NoError(t, err)

	reloaded, err := v.load(ctx, first)
	require.NoError(t, err)
	assert.NotSame(t, original, reloaded, "evicted entry is parsed afresh")
	require.NotNil(t, reloaded.program.Unit("a"))
}
