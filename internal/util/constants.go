package util

const (
	StorageLocal    = "local"
	StorageGitHub   = "github"
	StorageMinio    = "minio"
	StorageDatabase = "database"
)

const (
	WriteModeMutation = "mutation" // nach jeder Mutation speichern
	WriteModeManual   = "manual"   // nur auf expliziten Save
)
