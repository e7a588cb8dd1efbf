package config

const (
	// MaxTitleLength is the maximum length for progression and resource titles.
	// Matches the upstream VARCHAR(255) columns.
	MaxTitleLength = 255

	// MaxTreeDepth is the number of levels below the root
	// (progression, sequence, session, resource).
	MaxTreeDepth = 4

	// DefaultChatHistoryLimit is the number of prior messages sent with a chat request.
	DefaultChatHistoryLimit = 20

	// DefaultFetchConcurrency bounds parallel child fetches during eager loads.
	DefaultFetchConcurrency = 4
)
