package model

import "time"

// ESThread is the Elasticsearch document for a forum thread.
type ESThread struct {
	ID             string    `json:"id"` // document id, "thread_{mysql_id}"
	ThreadID       uint      `json:"thread_id"`
	Title          string    `json:"title"`
	FirstPost      string    `json:"first_post"`
	AuthorID       uint      `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	Tags           []string  `json:"tags"`
	Status         string    `json:"status"`
	Pinned         bool      `json:"pinned"`
	PostsCount     int64     `json:"posts_count"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// ESIndexName returns the index name.
func (ESThread) ESIndexName() string {
	return "forum_threads"
}

// ESMapping returns the index mapping.
func (ESThread) ESMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 1,
			"analysis": {
				"analyzer": {
					"text_analyzer": {
						"type": "custom",
						"tokenizer": "standard",
						"char_filter": ["html_strip"],
						"filter": ["lowercase", "asciifolding"]
					}
				}
			}
		},
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"thread_id": { "type": "long" },
				"title": {
					"type": "text",
					"analyzer": "text_analyzer",
					"fields": {
						"keyword": { "type": "keyword" }
					}
				},
				"first_post": { "type": "text", "analyzer": "text_analyzer" },
				"author_id": { "type": "long" },
				"author_name": { "type": "keyword" },
				"tags": { "type": "keyword" },
				"status": { "type": "keyword" },
				"pinned": { "type": "boolean" },
				"posts_count": { "type": "long" },
				"last_activity_at": { "type": "date" },
				"created_at": { "type": "date" }
			}
		}
	}`
}
