package service

import "github.com/lucidpath/wellness-api/internal/config"

// normalizePage clamps page/limit to sane bounds. Defaults come from config
// when loaded, otherwise fixed fallbacks so tests need no config file.
func normalizePage(page, limit int) (int, int) {
	defaultLimit, maxLimit := 10, 100
	if cfg := config.GlobalConfig; cfg != nil {
		defaultLimit = cfg.Forum.DefaultPageSize
		maxLimit = cfg.Forum.MaxPageSize
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func offset(page, limit int) int {
	return (page - 1) * limit
}
