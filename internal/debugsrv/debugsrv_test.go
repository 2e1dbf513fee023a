package debugsrv

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/gendiag"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *lrgen.Table {
	g := bnf.NewGrammar()
	num := g.AddNamedTerminal("NUMBER", 0)
	term := g.AddNonterminal("N_Term", 0)
	g.AddProduction(term, []bnf.Symbol{{Kind: bnf.SymTerminal, Terminal: num}}, bnf.Action{Kind: bnf.ActionCopy, SourceIndex: 0})
	return lrgen.Generate(g, term)
}

func Test_Server_rejectsMissingBearerToken(t *testing.T) {
	srv := New(map[string]*lrgen.Table{"Term": testTable()}, gendiag.New(nil, 10))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/grammar/Term")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func Test_Server_acceptsIssuedToken(t *testing.T) {
	srv := New(map[string]*lrgen.Table{"Term": testTable()}, gendiag.New(nil, 10))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	tok, err := srv.IssueToken(time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/grammar/Term", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func Test_Server_unknownStartIs404(t *testing.T) {
	srv := New(map[string]*lrgen.Table{"Term": testTable()}, gendiag.New(nil, 10))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	tok, err := srv.IssueToken(time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/grammar/Nope", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
