package chat

// LeadDraft is the working set of contact fields collected from a chat
// session. All fields are optional individually; the draft is only turned
// into a booking once IsComplete holds.
type LeadDraft struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// HasContactData reports whether any of the identifying fields is set.
func (d LeadDraft) HasContactData() bool {
	return d.Name != "" || d.Email != "" || d.Phone != ""
}

// IsComplete reports whether the draft carries everything a booking needs:
// a name, a syntactically valid email and a normalizable phone.
func (d LeadDraft) IsComplete() bool {
	return len(MissingLeadFields(d)) == 0
}

// IsEmpty reports whether no field at all is set.
func (d LeadDraft) IsEmpty() bool {
	return d == LeadDraft{}
}

// MergeLeadDraft combines a stored draft with newly extracted fields. The
// merge is right-biased: a non-empty patch field always wins, an empty patch
// field never erases previously captured data.
func MergeLeadDraft(base, patch LeadDraft) LeadDraft {
	return LeadDraft{
		Name:    firstNonEmpty(patch.Name, base.Name),
		Email:   firstNonEmpty(patch.Email, base.Email),
		Phone:   firstNonEmpty(patch.Phone, base.Phone),
		Service: firstNonEmpty(patch.Service, base.Service),
		Message: firstNonEmpty(patch.Message, base.Message),
	}
}

// MissingLeadFields returns which required fields still block a booking,
// in stable order: name, email, phone.
func MissingLeadFields(d LeadDraft) []string {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Email == "" || !IsValidEmail(d.Email) {
		missing = append(missing, "email")
	}
	if d.Phone == "" || NormalizePhone(d.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
