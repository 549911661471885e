package main

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

var cash *cache.Cache

const (
	CACHENAME_GH_PROXY    = "ghproxy"
	CACHENAME_TT_PROXY    = "ttproxy"
	CACHENAME_TT_USERS    = "ttusers"
	CACHENAME_DASH_REPORT = "dashreport"

	DEFAULT_CACHE_EXPIRATION = 20 * time.Minute
)

func initCache() {
	cash = cache.New(DEFAULT_CACHE_EXPIRATION, 10*time.Minute)
}
