package constants

// Waitlist storage defaults. The file lives beneath the process working directory.
const (
	DefaultWaitlistDataDir  = "data"
	DefaultWaitlistFileName = "waitlist.json"
	DefaultWaitlistRedisKey = "aimaker-waitlist"

	DefaultMongoDatabase   = "aimaker"
	DefaultMongoCollection = "waitlist"
)

// Storage backend identifiers accepted by WAITLIST_BACKEND.
const (
	BackendDatabase = "database"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

const ServiceName = "aimaker-waitlist"
