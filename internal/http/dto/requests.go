package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
	Reason   string `json:"reason,omitempty"`
}

type ChangeRoleRequest struct {
	Role   string `json:"role"`
	Reason string `json:"reason,omitempty"`
}

type BlockRequest struct {
	Reason string `json:"reason,omitempty"`
}

type UpdateProfileRequest struct {
	Name    string  `json:"name"`
	Bio     *string `json:"bio,omitempty"`
	Website *string `json:"website,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

type DeleteRequest struct {
	Reason string `json:"reason,omitempty"`
}

type CreateToolRequest struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

type UpdateToolRequest struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

type PublishRequest struct {
	Published bool   `json:"published"`
	Reason    string `json:"reason,omitempty"`
}

type VisibilityRequest struct {
	Visible bool   `json:"visible"`
	Reason  string `json:"reason,omitempty"`
}

type PostStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
