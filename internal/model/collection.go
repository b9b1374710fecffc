package model

// Collection names one of the record sets. The value doubles as the URL
// segment under /api and as the key in the persisted dataset.
type Collection string

const (
	CollectionLeads       Collection = "leads"
	CollectionEnrollments Collection = "matriculas"
	CollectionContacts    Collection = "contatos"
)

// Collections lists every collection in dataset order.
var Collections = []Collection{CollectionLeads, CollectionEnrollments, CollectionContacts}

// ParseCollection maps a URL segment to a Collection.
func ParseCollection(s string) (Collection, bool) {
	for _, c := range Collections {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
