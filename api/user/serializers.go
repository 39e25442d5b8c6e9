package user

// Pointer fields tell a missing key apart from a zero value; "required"
// only rejects the former.
type InCreateUser struct {
	Email         *string `json:"email" validate:"required"`
	Password      *string `json:"password" validate:"required"`
	Name          *string `json:"name" validate:"required"`
	BirthYear     *int    `json:"birth_year" validate:"required"`
	Gender        *string `json:"gender"`
	Region        *string `json:"region" validate:"required"`
	SchoolName    *string `json:"school_name" validate:"required"`
	SchoolType    *string `json:"school_type" validate:"required"`
	AdmissionYear *int    `json:"admission_year" validate:"required"`
}

type InUpsertDetail struct {
	TransferHistory *string `json:"transfer_history"`
	ClassInfo       *string `json:"class_info"`
	ClubName        *string `json:"club_name"`
	Nickname        *string `json:"nickname"`
	MemoryKeywords  *string `json:"memory_keywords"`
}

type InCreatePost struct {
	Title   *string `json:"title" validate:"required"`
	Content *string `json:"content" validate:"required"`
}
