package service

import (
	"bufio"
	"encoding/base64"
	"os"
	"strings"
	"sync"

	"github.com/importcjj/sensitive"
	"github.com/lucidpath/wellness-api/internal/logger"
	"go.uber.org/zap"
)

var (
	sensitiveService     *SensitiveService
	sensitiveServiceOnce sync.Once
)

// SensitiveService masks blocked words in user generated content before it
// is stored.
type SensitiveService struct {
	filter *sensitive.Filter
	logger *zap.SugaredLogger
}

// NewSensitiveService returns the filter singleton. Words are loaded from
// sensitive_words.txt, one base64-encoded word per line; a missing file
// leaves the filter empty.
func NewSensitiveService() *SensitiveService {
	sensitiveServiceOnce.Do(func() {
		sensitiveService = &SensitiveService{
			filter: sensitive.New(),
			logger: logger.GetSugaredLogger(),
		}
		if err := sensitiveService.loadWordsFromFile("sensitive_words.txt"); err != nil {
			sensitiveService.logger.Warnf("load sensitive words failed: %v", err)
		}
	})
	return sensitiveService
}

func (s *SensitiveService) loadWordsFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		decoded, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			s.logger.Warnf("decode sensitive word failed: %v", err)
			continue
		}

		word := strings.TrimSpace(string(decoded))
		if word != "" {
			s.filter.AddWord(word)
			count++
		}
	}

	s.logger.Infof("loaded %d sensitive words", count)
	return scanner.Err()
}

// Filter replaces blocked words with asterisks.
func (s *SensitiveService) Filter(text string) string {
	return s.filter.Replace(text, '*')
}

// Validate reports whether text is clean, and the first blocked word found.
func (s *SensitiveService) Validate(text string) (bool, string) {
	return s.filter.Validate(text)
}
