package workflow

import (
	authtokendomain "content-commerce/backend/internal/authtoken/domain"
	buyingdomain "content-commerce/backend/internal/buying/domain"
	socialdomain "content-commerce/backend/internal/social/domain"
	tenantdomain "content-commerce/backend/internal/tenant/domain"
	userdomain "content-commerce/backend/internal/user/domain"
)

// UserParams are the inputs of the user creation pipeline.
type UserParams struct {
	FirstName string
	LastName  string
	Email     string
	// Password may be plain text or an existing bcrypt hash.
	Password string
	Service  *tenantdomain.Service
	// Username is generated when empty.
	Username  string
	SendMail  bool
	EmailType tenantdomain.EmailType
	// Event makes the new user a guest of that event.
	Event      *socialdomain.Event
	IsVerified bool
	Profile    userdomain.Profile
}

// UserState is shared by the user creation steps.
type UserState struct {
	UserParams

	User  *userdomain.User
	Token *authtokendomain.Token
}

// PipelineUser returns the created user, or nil before CreateUser ran.
func (s *UserState) PipelineUser() *userdomain.User { return s.User }

// ContractState is shared by the purchase contract steps.
type ContractState struct {
	Receipt string
	Package *buyingdomain.Package
	User    *userdomain.User

	StoredReceipt string
	Contract      *buyingdomain.Contract
}

// PipelineUser returns the purchasing user.
func (s *ContractState) PipelineUser() *userdomain.User { return s.User }

// MentionState is shared by the mention notification steps.
type MentionState struct {
	User    *userdomain.User
	Comment *socialdomain.Comment
}

// PipelineUser returns the mentioned user.
func (s *MentionState) PipelineUser() *userdomain.User { return s.User }

// NewPostState is the input of the new-post notification pipeline.
type NewPostState struct {
	Guest *userdomain.User
	Post  *socialdomain.Post
}

// PipelineUser returns the guest to notify.
func (s *NewPostState) PipelineUser() *userdomain.User { return s.Guest }
