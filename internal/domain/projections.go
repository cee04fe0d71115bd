package domain

// ProfileView es la proyeccion publica de GET /users/profile/:email.
type ProfileView struct {
	Profile TutorProfile `json:"profile"`
	Name    string       `json:"name,omitempty"`
	Email   string       `json:"email"`
	Image   string       `json:"image,omitempty"`
	Role    Role         `json:"role"`
}

// TutorListing es una entrada del directorio de tutores.
type TutorListing struct {
	ID      string        `json:"_id,omitempty"`
	Name    string        `json:"name,omitempty"`
	Email   string        `json:"email"`
	Image   string        `json:"image,omitempty"`
	Profile *TutorProfile `json:"profile,omitempty"`
}

func NewProfileView(u User) ProfileView {
	profile := DefaultTutorProfile()
	if u.Profile != nil {
		profile = u.Profile.Normalized()
	}
	return ProfileView{
		Profile: profile,
		Name:    u.Name,
		Email:   u.Email,
		Image:   u.Image,
		Role:    u.Role,
	}
}

func NewTutorListing(u User) TutorListing {
	listing := TutorListing{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
	}
	if u.Profile != nil {
		p := u.Profile.Normalized()
		listing.Profile = &p
	}
	return listing
}
