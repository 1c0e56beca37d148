package poegate

// Role represents the role of a message sender.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// roleAssistant is a legacy label carried by histories recorded before the
// bot role was canonical. It is never written, only read.
const roleAssistant Role = "assistant"

// NormalizeRole maps legacy role labels onto their canonical equivalents.
// "assistant" means bot output and is rewritten to RoleBot; every other
// role is returned unchanged.
func NormalizeRole(r Role) Role {
	if r == roleAssistant {
		return RoleBot
	}
	return r
}
