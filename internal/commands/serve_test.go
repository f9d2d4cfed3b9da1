package commands

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankpush/bankpush/internal/accounts"
	"github.com/bankpush/bankpush/internal/upload"
)

func TestServe_StopsOnCancel(t *testing.T) {
	srv := upload.NewServer(upload.Config{
		Accounts: accounts.NewRouter(accounts.Account{Name: "default"}),
		Logger:   zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, "127.0.0.1:0", time.Minute) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	srv := upload.NewServer(upload.Config{
		Accounts: accounts.NewRouter(accounts.Account{Name: "default"}),
		Logger:   zerolog.Nop(),
	})

	err := serve(context.Background(), srv, "127.0.0.1:-1", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}
