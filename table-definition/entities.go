package tabledefinition

import (
	"fmt"

	"github.com/relloyd/geniepipe/constants"
)

const (
	EntitySpaces        = "spaces"
	EntityConversations = "conversations"
	EntityMessages      = "messages"
	EntityQuarantine    = "quarantine"
)

// Column names shared between the entity schemas, the enrichment join and the rollups.
const (
	ColSpaceId              = "space_id"
	ColConversationId       = "conversation_id"
	ColMessageId            = "message_id"
	ColTitle                = "title"
	ColCreatedTimestamp     = "created_timestamp"
	ColLastUpdatedTimestamp = "last_updated_timestamp"
	ColAuthorId             = "author_id"
	ColAuthorName           = "author_name"
	ColAuthorEmail          = "author_email"
	ColContent              = "content"
	ColPayloadJson          = "payload_json"
	ColIngestedAt           = "ingested_at"
	ColQuarantineId         = "quarantine_id"
	ColEntity               = "entity"
	ColReason               = "reason"
)

// Enrichment fields resolved from the user directory.
const (
	EnrichDisplayName = "display_name"
	EnrichEmail       = "email"
)

func payloadColumn() Column {
	return Column{Name: ColPayloadJson, Type: TypeText, Source: SourcePayload}
}

func ingestedAtColumn() Column {
	return Column{Name: ColIngestedAt, Type: TypeTimestampMs, Source: SourceIngestedAt}
}

// SpacesSchema maps Genie spaces to table genie_spaces.
func SpacesSchema() Schema {
	return Schema{
		Entity: EntitySpaces,
		Table:  constants.TablePrefix + EntitySpaces,
		Key:    ColSpaceId,
		Columns: []Column{
			{Name: ColSpaceId, Type: TypeString, Source: SourceJson, Path: "$.space_id"},
			{Name: ColTitle, Type: TypeString, Source: SourceJson, Path: "$.title"},
			{Name: "description", Type: TypeText, Source: SourceJson, Path: "$.description"},
			{Name: "warehouse_id", Type: TypeString, Source: SourceJson, Path: "$.warehouse_id"},
			payloadColumn(),
			ingestedAtColumn(),
		},
	}
}

// ConversationsSchema maps the conversations of a space to table genie_conversations.
func ConversationsSchema() Schema {
	return Schema{
		Entity:      EntityConversations,
		Table:       constants.TablePrefix + EntityConversations,
		Key:         ColConversationId,
		PartitionBy: []string{ColSpaceId},
		Columns: []Column{
			{Name: ColSpaceId, Type: TypeString, Source: SourceContext, Path: ColSpaceId},
			{Name: ColConversationId, Type: TypeString, Source: SourceJson, Path: "$.conversation_id"},
			{Name: ColTitle, Type: TypeString, Source: SourceJson, Path: "$.title"},
			{Name: ColCreatedTimestamp, Type: TypeTimestampMs, Source: SourceJson, Path: "$.created_timestamp"},
			ingestedAtColumn(),
			payloadColumn(),
		},
	}
}

// MessagesSchema maps the messages of a conversation to table genie_messages.
// Author name and email are filled in by the user enrichment join.
func MessagesSchema() Schema {
	return Schema{
		Entity:      EntityMessages,
		Table:       constants.TablePrefix + EntityMessages,
		Key:         ColMessageId,
		PartitionBy: []string{ColSpaceId},
		Columns: []Column{
			{Name: ColSpaceId, Type: TypeString, Source: SourceContext, Path: ColSpaceId},
			{Name: ColConversationId, Type: TypeString, Source: SourceContext, Path: ColConversationId},
			{Name: ColMessageId, Type: TypeString, Source: SourceJson, Path: "$.message_id"},
			{Name: ColAuthorId, Type: TypeString, Source: SourceJson, Path: "$.user_id"},
			{Name: ColAuthorName, Type: TypeString, Source: SourceEnrichment, Path: EnrichDisplayName},
			{Name: ColAuthorEmail, Type: TypeString, Source: SourceEnrichment, Path: EnrichEmail},
			{Name: ColCreatedTimestamp, Type: TypeTimestampMs, Source: SourceJson, Path: "$.created_timestamp"},
			{Name: ColLastUpdatedTimestamp, Type: TypeTimestampMs, Source: SourceJson, Path: "$.last_updated_timestamp"},
			{Name: ColContent, Type: TypeText, Source: SourceJson, Path: "$.content"},
			ingestedAtColumn(),
			payloadColumn(),
		},
	}
}

// QuarantineSchema describes table genie_quarantine, which keeps records that could not be flattened.
// Rows are built directly rather than flattened from JSON so the paths only document their origin.
func QuarantineSchema() Schema {
	return Schema{
		Entity: EntityQuarantine,
		Table:  constants.TablePrefix + EntityQuarantine,
		Key:    ColQuarantineId,
		Columns: []Column{
			{Name: ColQuarantineId, Type: TypeString, Source: SourceContext, Path: ColQuarantineId},
			{Name: ColEntity, Type: TypeString, Source: SourceContext, Path: ColEntity},
			{Name: ColReason, Type: TypeString, Source: SourceContext, Path: ColReason},
			payloadColumn(),
			ingestedAtColumn(),
		},
	}
}

// AllSchemas returns the schema of every table written by an ingest run.
func AllSchemas() []Schema {
	return []Schema{SpacesSchema(), ConversationsSchema(), MessagesSchema(), QuarantineSchema()}
}

// MustValidateAll panics if any built-in schema is invalid.
func MustValidateAll() {
	for _, s := range AllSchemas() {
		if err := s.Validate(); err != nil {
			panic(fmt.Sprintf("invalid built-in schema: %v", err))
		}
	}
}
