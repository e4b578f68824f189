package files

import (
	"codeberg.org/starterkit/server/internal/odm"
)

const ModelName = "File"

func Schema() *odm.Schema {
	return &odm.Schema{
		Name:       ModelName,
		Collection: "files",
		Strict:     true,
		Timestamps: true,
		Fields: map[string]odm.Field{
			"originalName": {Type: odm.TypeString, Required: true, Trim: true},
			"fileName":     {Type: odm.TypeString, Required: true},
			"fileKey":      {Type: odm.TypeString, Required: true, Unique: true},
			"fileUrl":      {Type: odm.TypeString, Required: true},
			"mimeType":     {Type: odm.TypeString, Required: true},
			"fileSize":     {Type: odm.TypeNumber, Required: true},
			"uploadedBy":   {Type: odm.TypeObjectID, Required: true},
			"folder":       {Type: odm.TypeString, Trim: true, Default: "uploads"},
			"description":  {Type: odm.TypeString, Trim: true, MaxLength: 500},
			"isActive":     {Type: odm.TypeBool, Default: true},
		},
	}
}
