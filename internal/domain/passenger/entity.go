package passenger

import "time"

// Passenger は乗客エンティティを表す
// 携帯電話番号を自然キーとして検索されるが、一意性はこの層では強制しない
type Passenger struct {
	ID           string
	Name         string
	MobileNumber string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPassenger は新しい乗客を作成する
func NewPassenger(name, mobileNumber, email string) (*Passenger, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if mobileNumber == "" {
		return nil, ErrMobileNumberRequired
	}
	now := time.Now()
	return &Passenger{
		Name:         name,
		MobileNumber: mobileNumber,
		Email:        email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateDetails は乗客の連絡先情報を更新する
func (p *Passenger) UpdateDetails(name, mobileNumber, email string) {
	p.Name = name
	p.MobileNumber = mobileNumber
	p.Email = email
	p.UpdatedAt = time.Now()
}
