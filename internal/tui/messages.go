package tui

import (
	"github.com/linqiu/marketlens/internal/backfill"
)

type progressMsg backfill.Progress

type backfillDoneMsg struct{}
