// ABOUTME: Column tables for the contact and deal backend tables
// ABOUTME: Enumerates every external key with its domain field and default
package records

import (
	"time"

	"github.com/harperreed/dealdesk/models"
)

const (
	ContactTable = "app_contact_c"
	DealTable    = "app_deal_c"

	KeyID        = "Id"
	KeyName      = "Name"
	KeyCreatedAt = "createdAt_c"
	KeyTags      = "Tags"
	KeyOwner     = "Owner"

	KeyCompany = "company_c"
	KeyEmail   = "email_c"
	KeyPhone   = "phone_c"

	KeyValue     = "value_c"
	KeyStage     = "stage_c"
	KeyContactID = "contactId_c"
)

// ContactMapping returns the contact column table.
func ContactMapping() *Mapping[models.Contact, models.ContactInput] {
	return &Mapping[models.Contact, models.ContactInput]{
		Table:      ContactTable,
		IDKey:      KeyID,
		CreatedKey: KeyCreatedAt,
		Columns: []Column[models.Contact, models.ContactInput]{
			{
				Key:   KeyID,
				Write: WriteNever,
				Decode: func(c *models.Contact, v any, _ time.Time) {
					c.ID, _ = Int(v)
				},
			},
			{
				Key:    KeyName,
				Decode: func(c *models.Contact, v any, _ time.Time) { c.Name = Text(v) },
				Encode: func(in models.ContactInput, _ time.Time) any { return in.Name },
			},
			{
				Key:    KeyCompany,
				Decode: func(c *models.Contact, v any, _ time.Time) { c.Company = Text(v) },
				Encode: func(in models.ContactInput, _ time.Time) any { return in.Company },
			},
			{
				Key:    KeyEmail,
				Decode: func(c *models.Contact, v any, _ time.Time) { c.Email = Text(v) },
				Encode: func(in models.ContactInput, _ time.Time) any { return in.Email },
			},
			{
				Key:    KeyPhone,
				Decode: func(c *models.Contact, v any, _ time.Time) { c.Phone = Text(v) },
				Encode: func(in models.ContactInput, _ time.Time) any { return in.Phone },
			},
			{
				Key:    KeyCreatedAt,
				Write:  WriteOnCreate,
				Decode: func(c *models.Contact, v any, now time.Time) { c.CreatedAt = Time(v, now) },
				Encode: func(_ models.ContactInput, now time.Time) any { return FormatTime(now) },
			},
			{
				Key:    KeyTags,
				Decode: func(c *models.Contact, v any, _ time.Time) { c.Tags = Text(v) },
				Encode: func(in models.ContactInput, _ time.Time) any { return in.Tags },
			},
			{
				Key:    KeyOwner,
				Decode: func(c *models.Contact, v any, _ time.Time) { c.Owner = Owner(v) },
				Encode: func(in models.ContactInput, _ time.Time) any { return EncodeOwner(in.Owner) },
			},
		},
	}
}

// DealMapping returns the deal column table.
func DealMapping() *Mapping[models.Deal, models.DealInput] {
	return &Mapping[models.Deal, models.DealInput]{
		Table:      DealTable,
		IDKey:      KeyID,
		CreatedKey: KeyCreatedAt,
		Columns: []Column[models.Deal, models.DealInput]{
			{
				Key:   KeyID,
				Write: WriteNever,
				Decode: func(d *models.Deal, v any, _ time.Time) {
					d.ID, _ = Int(v)
				},
			},
			{
				Key:    KeyName,
				Decode: func(d *models.Deal, v any, _ time.Time) { d.Name = Text(v) },
				Encode: func(in models.DealInput, _ time.Time) any { return in.Name },
			},
			{
				Key:    KeyValue,
				Decode: func(d *models.Deal, v any, _ time.Time) { d.Value = Number(v) },
				Encode: func(in models.DealInput, _ time.Time) any { return ParseNumber(in.Value) },
			},
			{
				Key:    KeyStage,
				Decode: func(d *models.Deal, v any, _ time.Time) { d.Stage = StageOf(v) },
				Encode: func(in models.DealInput, _ time.Time) any {
					if in.Stage == "" {
						return string(models.StageLead)
					}
					return string(in.Stage)
				},
			},
			{
				Key:    KeyContactID,
				Decode: func(d *models.Deal, v any, _ time.Time) { d.ContactID = Ref(v) },
				Encode: func(in models.DealInput, _ time.Time) any {
					if ref := ParseRef(in.ContactID); ref != nil {
						return *ref
					}
					return nil
				},
			},
			{
				Key:    KeyCreatedAt,
				Write:  WriteOnCreate,
				Decode: func(d *models.Deal, v any, now time.Time) { d.CreatedAt = Time(v, now) },
				Encode: func(_ models.DealInput, now time.Time) any { return FormatTime(now) },
			},
			{
				Key:    KeyTags,
				Decode: func(d *models.Deal, v any, _ time.Time) { d.Tags = Text(v) },
				Encode: func(in models.DealInput, _ time.Time) any { return in.Tags },
			},
			{
				Key:    KeyOwner,
				Decode: func(d *models.Deal, v any, _ time.Time) { d.Owner = Owner(v) },
				Encode: func(in models.DealInput, _ time.Time) any { return EncodeOwner(in.Owner) },
			},
		},
	}
}
