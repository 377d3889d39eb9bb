package service

import (
	"io"
	"log/slog"

	"github.com/mindlog/mindlog/internal/auth"
)

var (
	cheapHasher = auth.NewHasher(auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1})
	quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)
