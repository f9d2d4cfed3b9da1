package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRouter() *Router {
	return NewRouter(
		Account{Name: "default", Prefix: "Lourenco", ID: "acct-default"},
		Account{Name: "shared", Prefix: "Sharedexpenses", ID: "acct-shared"},
		Account{Name: "second", Prefix: "Louise", ID: "acct-second"},
	)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Sharedexpenses-2024-01.csv", "acct-shared"},
		{"/tmp/upload-123/Sharedexpenses-2024-01.csv", "acct-shared"},
		{"Louise-2024-01.csv", "acct-second"},
		{"Lourenco-2024-01.csv", "acct-default"},
		{"export.csv", "acct-default"},
		{"my-Louise-2024.csv", "acct-default"},
	}
	for _, tt := range tests {
		got := testRouter().Resolve(tt.filename)
		assert.Equal(t, tt.want, got.ID, "filename: %s", tt.filename)
	}
}

func TestResolve_EmptyPrefixNeverMatches(t *testing.T) {
	r := NewRouter(Account{Name: "default", ID: "d"}, Account{Name: "shared", ID: "s"})
	assert.Equal(t, "d", r.Resolve("anything.csv").ID)
}

func TestPrefixes(t *testing.T) {
	assert.Equal(t, []string{"Lourenco", "Sharedexpenses", "Louise"}, testRouter().Prefixes())
}

func TestAll(t *testing.T) {
	all := testRouter().All()
	assert.Len(t, all, 3)
	assert.Equal(t, "default", all[2].Name)
}
