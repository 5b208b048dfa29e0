package institution

type CreateInstitutionDTO struct {
	Name             string  `json:"name" validate:"required,max=255"`
	ShortName        *string `json:"shortName" validate:"omitempty,max=50"`
	Type             string  `json:"type" validate:"required,enum=institution_type"`
	Country          string  `json:"country" validate:"omitempty,max=100"`
	Region           *string `json:"region" validate:"omitempty,max=100"`
	Website          *string `json:"website" validate:"omitempty,url"`
	LogoURL          *string `json:"logoUrl" validate:"omitempty,url"`
	SubscriptionTier string  `json:"subscriptionTier" validate:"omitempty,enum=subscription_tier"`
}

// UpdateInstitutionDTO is a partial patch; nil fields are left untouched.
type UpdateInstitutionDTO struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=255"`
	ShortName        *string `json:"shortName" validate:"omitempty,max=50"`
	Type             *string `json:"type" validate:"omitempty,enum=institution_type"`
	Country          *string `json:"country" validate:"omitempty,max=100"`
	Region           *string `json:"region" validate:"omitempty,max=100"`
	Website          *string `json:"website" validate:"omitempty,url"`
	LogoURL          *string `json:"logoUrl" validate:"omitempty,url"`
	SubscriptionTier *string `json:"subscriptionTier" validate:"omitempty,enum=subscription_tier"`
	IsActive         *bool   `json:"isActive"`
}

func (d UpdateInstitutionDTO) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if d.Name != nil {
		changes["name"] = *d.Name
	}
	if d.ShortName != nil {
		changes["short_name"] = *d.ShortName
	}
	if d.Type != nil {
		changes["type"] = *d.Type
	}
	if d.Country != nil {
		changes["country"] = *d.Country
	}
	if d.Region != nil {
		changes["region"] = *d.Region
	}
	if d.Website != nil {
		changes["website"] = *d.Website
	}
	if d.LogoURL != nil {
		changes["logo_url"] = *d.LogoURL
	}
	if d.SubscriptionTier != nil {
		changes["subscription_tier"] = *d.SubscriptionTier
	}
	if d.IsActive != nil {
		changes["is_active"] = *d.IsActive
	}
	return changes
}

type CreateDepartmentDTO struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Code    *string `json:"code" validate:"omitempty,max=20"`
	Faculty *string `json:"faculty" validate:"omitempty,max=255"`
}

// ListFilter drives GET /institutions. IsActive defaults to true.
type ListFilter struct {
	Country  string
	Type     string
	IsActive *bool
}
