package types

// Source names a record collection that views can be configured over.
type Source string

// Standard sources.
const (
	SourceCustomerSegments  Source = "CUSTOMER_SEGMENTS"
	SourcePersonas          Source = "PERSONAS"
	SourceValuePropositions Source = "VALUE_PROPOSITIONS"
	SourceBusinessModels    Source = "BUSINESS_MODELS"
)

// StandardSources lists all sources for enumeration.
var StandardSources = []Source{
	SourceCustomerSegments,
	SourcePersonas,
	SourceValuePropositions,
	SourceBusinessModels,
}

// Valid reports whether s is one of the standard sources.
func (s Source) Valid() bool {
	_, ok := sourceFieldTypes[s]
	return ok
}

// FieldType tells the view engine how to compare a field's values.
type FieldType string

// Field types. Fields without metadata are compared by inspecting the value.
const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
	FieldList    FieldType = "list"
)

var auditFields = map[string]FieldType{
	"id":        FieldText,
	"createdAt": FieldDate,
	"updatedAt": FieldDate,
}

var sourceFieldTypes = map[Source]map[string]FieldType{
	SourceCustomerSegments: {
		"name":            FieldText,
		"description":     FieldText,
		"size":            FieldNumber,
		"characteristics": FieldList,
		"tags":            FieldList,
	},
	SourcePersonas: {
		"name":         FieldText,
		"segmentId":    FieldText,
		"segment.name": FieldText,
		"segment.size": FieldNumber,
		"age":          FieldNumber,
		"occupation":   FieldText,
		"location":     FieldText,
		"goals":        FieldList,
		"painPoints":   FieldList,
		"channels":     FieldList,
		"tags":         FieldList,
	},
	SourceValuePropositions: {
		"name":                     FieldText,
		"description":              FieldText,
		"segmentId":                FieldText,
		"segment.name":             FieldText,
		"tags":                     FieldList,
		"customerJobs.content":     FieldText,
		"customerPains.content":    FieldText,
		"gainCreators.content":     FieldText,
		"painRelievers.content":    FieldText,
		"productsServices.content": FieldText,
		"statements.content":       FieldText,
	},
	SourceBusinessModels: {
		"name":                  FieldText,
		"description":           FieldText,
		"valuePropositionId":    FieldText,
		"valueProposition.name": FieldText,
		"keyPartners":           FieldList,
		"keyActivities":         FieldList,
		"keyResources":          FieldList,
		"customerRelationships": FieldList,
		"channels":              FieldList,
		"costStructure":         FieldList,
		"revenueStreams":        FieldList,
		"tags":                  FieldList,
	},
}

// FieldTypes returns the field-type metadata for a source, keyed by field
// path. The returned map is a copy. Unknown sources yield only the audit
// fields shared by every entity.
func FieldTypes(source Source) map[string]FieldType {
	fields := sourceFieldTypes[source]
	out := make(map[string]FieldType, len(fields)+len(auditFields))
	for k, v := range auditFields {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
