package users

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"codeberg.org/starterkit/server/internal/odm"
)

const ModelName = "User"

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// describes the users collection
func Schema() *odm.Schema {
	return &odm.Schema{
		Name:       ModelName,
		Collection: "users",
		Strict:     true,
		Timestamps: true,
		Fields: map[string]odm.Field{
			"name": {
				Type:      odm.TypeString,
				Required:  true,
				Trim:      true,
				MinLength: 2,
				MaxLength: 50,
			},
			"email": {
				Type:      odm.TypeString,
				Required:  true,
				Unique:    true,
				Trim:      true,
				Lowercase: true,
				Match:     emailPattern,
				Messages:  map[string]string{"regexp": "Please enter a valid email address"},
			},
			"password": {
				Type:      odm.TypeString,
				Required:  true,
				MinLength: 6,
				Hidden:    true,
			},
			"role": {
				Type:    odm.TypeString,
				Enum:    []string{RoleAdmin, RoleUser},
				Default: RoleUser,
			},
			"phone": {
				Type:     odm.TypeString,
				Trim:     true,
				Match:    phonePattern,
				Messages: map[string]string{"regexp": "Please enter a valid phone number"},
			},
			"address": {
				Type: odm.TypeObject,
				Fields: map[string]odm.Field{
					"street":  {Type: odm.TypeString, Trim: true},
					"city":    {Type: odm.TypeString, Trim: true},
					"state":   {Type: odm.TypeString, Trim: true},
					"zip":     {Type: odm.TypeString, Trim: true, Match: zipPattern, Messages: map[string]string{"regexp": "Invalid ZIP code"}},
					"country": {Type: odm.TypeString, Trim: true},
				},
			},
			"isActive": {Type: odm.TypeBool, Default: true},
			"profileImages": {
				Type: odm.TypeObject,
				Fields: map[string]odm.Field{
					"thumbnail": {Type: odm.TypeString},
					"medium":    {Type: odm.TypeString},
					"original":  {Type: odm.TypeString},
				},
			},
		},
	}
}

// converts the address into a document, leaving out empty parts
func (a *Address) document() bson.M {
	doc := bson.M{}

	set := func(key, value string) {
		if value != "" {
			doc[key] = value
		}
	}

	set("street", a.Street)
	set("city", a.City)
	set("state", a.State)
	set("zip", a.Zip)
	set("country", a.Country)

	return doc
}

func (p ProfileImages) document() bson.M {
	return bson.M{
		"thumbnail": p.Thumbnail,
		"medium":    p.Medium,
		"original":  p.Original,
	}
}
