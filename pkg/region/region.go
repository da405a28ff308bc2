package region

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"
	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/logger"
)

var (
	searcher *xdb.Searcher
	initOnce sync.Once
)

// Init loads the ip2region database into memory. Lookups degrade to
// "unknown" when the database is missing.
func Init() {
	initOnce.Do(func() {
		path := config.GlobalConfig.Region.XDBPath
		if path == "" {
			return
		}
		cBuff, err := xdb.LoadContentFromFile(path)
		if err != nil {
			logger.Errorf("load ip2region database failed: %v", err)
			return
		}
		s, err := xdb.NewWithBuffer(cBuff)
		if err != nil {
			logger.Errorf("create ip2region searcher failed: %v", err)
			return
		}
		searcher = s
		logger.Infof("ip2region database loaded from %s", path)
	})
}

// Lookup resolves an IP to a human-readable region string for login logs.
func Lookup(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return fmt.Sprintf("unknown-%s", ip)
	}
	if isIntranetIP(parsed) {
		return fmt.Sprintf("intranet-%s", ip)
	}
	if searcher == nil {
		return fmt.Sprintf("unknown-%s", ip)
	}

	record, err := searcher.SearchByStr(ip)
	if err != nil {
		return fmt.Sprintf("unknown-%s", ip)
	}

	fields := strings.Split(record, "|")
	regionName := "unknown"
	if len(fields) >= 4 && fields[3] != "0" {
		regionName = fields[3] // city
	} else if len(fields) >= 3 && fields[2] != "0" {
		regionName = fields[2] // province
	} else if len(fields) >= 1 && fields[0] != "0" {
		regionName = fields[0] // country
	}
	return fmt.Sprintf("%s-%s", regionName, ip)
}

func isIntranetIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return true
	}
	return (ip4[0] == 192 && ip4[1] == 168) ||
		(ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 32) ||
		(ip4[0] == 10) ||
		(ip4[0] == 169 && ip4[1] == 254)
}
