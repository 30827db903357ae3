package metadata

type fieldType int

const (
	typeString fieldType = iota
	// typeScalar is a string or a bare number.
	typeScalar
	typeInteger
	typeObject
	typeArray
	// typeOpaque values are kept as decoded and never walked.
	typeOpaque
)

// field declares one allow-listed metadata member. Objects with nil fields
// are free-form: every key is kept and walked up to maxDepth.
type field struct {
	name   string
	typ    fieldType
	fields []field
	items  *field
}

func str(name string) field    { return field{name: name, typ: typeString} }
func scalar(name string) field { return field{name: name, typ: typeScalar} }

func object(name string, fields ...field) field {
	return field{name: name, typ: typeObject, fields: fields}
}

func arrayOf(name string, item field) field {
	return field{name: name, typ: typeArray, items: &item}
}

var freeForm = field{typ: typeObject}

var referenceFields = []field{
	str("id"),
	str("type"),
	str("authors"),
	scalar("year"),
	str("title"),
	str("journal"),
	scalar("volume"),
	scalar("pages"),
	str("publisher"),
	str("location"),
	str("website"),
	str("access_date"),
	str("url"),
}

var referenceList = arrayOf("references", field{typ: typeObject, fields: referenceFields})

var tocFields = []field{
	str("id"),
}

var torFields = []field{
	str("id"),
	referenceList,
}

var commentFields = []field{
	arrayOf("messages", freeForm),
	str("status"),
	str("plugin"),
	str("pluginLastOpened"),
}

// Only the document carries the generated-section switches.
var documentCommentFields = append(append([]field{}, commentFields...),
	object("toc", tocFields...),
	object("tor", torFields...),
)

func entityFields(comments []field, extra ...field) []field {
	fs := []field{
		str("id"),
		str("title"),
		str("commands"),
		object("comments", comments...),
		arrayOf("variables", freeForm),
		{name: "pluginState", typ: typeOpaque},
		referenceList,
		arrayOf("attachments", freeForm),
		arrayOf("snapshots", freeForm),
		arrayOf("tasks", freeForm),
		str("updatedAt"),
	}
	return append(fs, extra...)
}

var allowList = map[Kind][]field{
	KindDocument:   entityFields(documentCommentFields, str("infoText"), field{name: "version", typ: typeInteger}),
	KindChapter:    entityFields(commentFields, str("anchorId")),
	KindParagraph:  entityFields(commentFields, str("type")),
	KindTOC:        tocFields,
	KindReferences: torFields,
}

// AllowedFields returns the top-level field names serialised for kind.
func AllowedFields(kind Kind) []string {
	fs := allowList[kind]
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.name
	}
	return names
}
