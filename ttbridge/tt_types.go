package main

// TeamTailor speaks JSON:API: type + attributes + relationships, kebab-case
// attribute keys, cursor pagination under links.next.

type TTRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type TTRelationship struct {
	Data *TTRef `json:"data"`
}

type TTResource struct {
	ID            string                    `json:"id,omitempty"`
	Type          string                    `json:"type"`
	Attributes    map[string]interface{}    `json:"attributes,omitempty"`
	Relationships map[string]TTRelationship `json:"relationships,omitempty"`
}

type TTLinks struct {
	Next string `json:"next"`
}

type TTMeta struct {
	RecordCount int `json:"record-count"`
	PageCount   int `json:"page-count"`
}

type TTError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type TTListDocument struct {
	Data   []TTResource `json:"data"`
	Links  TTLinks      `json:"links"`
	Meta   TTMeta       `json:"meta"`
	Errors []TTError    `json:"errors,omitempty"`
}

type TTSingleDocument struct {
	Data   TTResource `json:"data"`
	Errors []TTError  `json:"errors,omitempty"`
}

type TTPayload struct {
	Data TTResource `json:"data"`
}

func (r TTResource) stringAttr(name string) string {
	v, ok := r.Attributes[name].(string)
	if !ok {
		return ""
	}
	return v
}
