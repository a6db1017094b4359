package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixEligibility CachePrefix = "ELIG_"
	CachePrefixExplanation CachePrefix = "EXPL_"
	CachePrefixCrewState   CachePrefix = "CREW_STATE_"
	CachePrefixRoster      CachePrefix = "ROSTER_"
	CachePrefixRecommend   CachePrefix = "REC_"
)

const (
	// HeaderAPIKey carries the service credential on every API call.
	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-ID"
)
