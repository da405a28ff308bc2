package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"
)

// ESModel is implemented by models mirrored into Elasticsearch.
type ESModel interface {
	ESIndexName() string
	ESMapping() string
}

var esModels = []ESModel{
	&ESThread{},
}

var models = []interface{}{
	&User{},
	&Provider{},
	&MoodEntry{},
	&JournalEntry{},
	&Appointment{},
	&ForumThread{},
	&ForumPost{},
	&ThreadFlag{},
	&PostFlag{},
	&Notification{},
	&PushSubscription{},
	&LoginLog{},
}

// InitTables migrates every table.
func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate tables: %w", err)
	}
	return nil
}

// InitESIndices creates missing Elasticsearch indices.
func InitESIndices(client *elasticsearch.Client) error {
	ctx := context.Background()

	for _, m := range esModels {
		indexName := m.ESIndexName()
		mapping := m.ESMapping()

		resp, err := client.Indices.Exists([]string{indexName})
		if err != nil {
			return fmt.Errorf("check index %s: %w", indexName, err)
		}

		if resp.StatusCode == 404 {
			createResp, err := client.Indices.Create(
				indexName,
				client.Indices.Create.WithContext(ctx),
				client.Indices.Create.WithBody(strings.NewReader(mapping)),
			)
			if err != nil {
				return fmt.Errorf("create index %s: %w", indexName, err)
			}
			if createResp.IsError() {
				return fmt.Errorf("create index %s: %s", indexName, createResp.String())
			}
		}
	}
	return nil
}
