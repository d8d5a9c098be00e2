package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Attachment struct {
	ID         string    `bson:"id"         json:"id"`
	URL        string    `bson:"url"        json:"url"`
	ObjectName string    `bson:"objectName" json:"objectName"`
	MimeType   string    `bson:"mimeType"   json:"mimeType"`
	SizeBytes  int64     `bson:"sizeBytes"  json:"sizeBytes"`
	FileName   string    `bson:"fileName"   json:"fileName"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Article is a knowledge document. Product is a free-text label and is not
// a reference to a Product record. Body is either plain text, stored as
// written, or HTML that has been passed through the UGC sanitizer.
type Article struct {
	ID          bson.ObjectID `bson:"_id"         json:"id"`
	Product     string        `bson:"product"     json:"product"`
	Subject     string        `bson:"subject"     json:"subject"`
	Body        string        `bson:"body"        json:"body"`
	Date        time.Time     `bson:"date"        json:"date"`
	Attachments []Attachment  `bson:"attachments" json:"attachments"`
	CreatedAt   time.Time     `bson:"createdAt"   json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"   json:"updatedAt"`
}

// SearchResult is derived from an Article at query time and never stored.
type SearchResult struct {
	ID      bson.ObjectID `json:"id"`
	Product string        `json:"product"`
	Subject string        `json:"subject"`
	Body    string        `json:"body"`
	Date    time.Time     `json:"date"`
	Score   float64       `json:"score"`
}
