package domain

// Entries es una secuencia ordenada de valores opacos (strings u objetos).
type Entries []any

// TutorProfile combina los campos editables por el tutor con los campos de moderacion.
type TutorProfile struct {
	Title      string  `json:"title"`
	Bio        string  `json:"bio"`
	Location   string  `json:"location"`
	Phone      string  `json:"phone"`
	Education  Entries `json:"education"`
	Subjects   Entries `json:"subjects"`
	Experience Entries `json:"experience"`

	// Moderacion: nunca se toman del payload del cliente.
	Verified     bool    `json:"verified"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"totalReviews"`
}

// ProfileInput contiene solo los campos editables que puede enviar un cliente.
type ProfileInput struct {
	Title      string  `json:"title"`
	Bio        string  `json:"bio"`
	Location   string  `json:"location"`
	Phone      string  `json:"phone"`
	Education  Entries `json:"education"`
	Subjects   Entries `json:"subjects"`
	Experience Entries `json:"experience"`
}

// DefaultTutorProfile devuelve un perfil vacio con moderacion en cero.
func DefaultTutorProfile() TutorProfile {
	return TutorProfile{
		Education:  Entries{},
		Subjects:   Entries{},
		Experience: Entries{},
	}
}

// Moderation agrupa los campos controlados por el servidor.
type Moderation struct {
	Verified     bool
	Rating       float64
	TotalReviews int
}

// ModerationOf devuelve la moderacion actual, o ceros si no hay perfil.
func ModerationOf(p *TutorProfile) Moderation {
	if p == nil {
		return Moderation{}
	}
	return Moderation{
		Verified:     p.Verified,
		Rating:       p.Rating,
		TotalReviews: p.TotalReviews,
	}
}

// Merge arma el perfil final: editables del input (o vacios) y moderacion dada.
func (in ProfileInput) Merge(m Moderation) TutorProfile {
	return TutorProfile{
		Title:        in.Title,
		Bio:          in.Bio,
		Location:     in.Location,
		Phone:        in.Phone,
		Education:    nonNil(in.Education),
		Subjects:     nonNil(in.Subjects),
		Experience:   nonNil(in.Experience),
		Verified:     m.Verified,
		Rating:       m.Rating,
		TotalReviews: m.TotalReviews,
	}
}

// Normalized garantiza que las secuencias se serialicen como [] y no null.
func (p TutorProfile) Normalized() TutorProfile {
	p.Education = nonNil(p.Education)
	p.Subjects = nonNil(p.Subjects)
	p.Experience = nonNil(p.Experience)
	return p
}

func nonNil(e Entries) Entries {
	if e == nil {
		return Entries{}
	}
	return e
}

// RatingOf devuelve el rating del perfil; sin perfil cuenta como 0.
func RatingOf(p *TutorProfile) float64 {
	if p == nil {
		return 0
	}
	return p.Rating
}
