package endpoint

import (
	"encoding/json"
	"fmt"

	"github.com/c360/resourcekit/resource"
	"github.com/c360/resourcekit/schema"
)

// parseRawResponse normalizes a transport's raw outcome into a Response.
// Three body shapes are recognized: an error collection (kind "Errors"),
// a paginated list (_data plus _dataset_size), and a plain resource object.
// A body that does not parse as JSON maps by status: 408 becomes a timeout
// error, a 200 becomes an internal fault (a success status with garbage is a
// server bug), and anything else becomes a fault carrying the raw body for
// diagnostics.
func parseRawResponse(status int, body []byte) *resource.Response {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return unparsableResponse(status, body)
	}

	if kind, _ := parsed["kind"].(string); kind == "Errors" {
		errs := schema.NewErrors()
		if err := json.Unmarshal(body, errs); err != nil {
			return unparsableResponse(status, body)
		}
		// The wire status wins over whatever the contained codes imply.
		errs.SetStatus(status)
		return &resource.Response{Status: status, Errors: errs}
	}

	if rawList, ok := parsed["_data"]; ok {
		items, ok := rawList.([]any)
		if !ok {
			return faultResponse("list body has a non-array _data key")
		}
		list := make([]resource.Payload, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				return faultResponse("list body contains a non-object entry")
			}
			list = append(list, resource.Payload(entry))
		}

		size := len(list)
		if raw, ok := parsed["_dataset_size"].(float64); ok {
			size = int(raw)
		}
		return &resource.Response{Status: status, Resources: list, DatasetSize: size}
	}

	return &resource.Response{Status: status, Resource: resource.Payload(parsed)}
}

func unparsableResponse(status int, body []byte) *resource.Response {
	errs := schema.NewErrors()
	switch status {
	case 408:
		errs.Add(schema.CodeTimeout, "Inter-resource call timed out", "")
	case 200:
		errs.Add(schema.CodeFault,
			"Could not parse body data returned from inter-resource call despite a success status code", "")
	default:
		errs.Add(schema.CodeFault,
			fmt.Sprintf("Inter-resource call failed with status %d and an unparsable body", status),
			string(body))
		errs.SetStatus(status)
	}
	return resource.Failed(errs)
}

func faultResponse(message string) *resource.Response {
	errs := schema.NewErrors()
	errs.Add(schema.CodeFault, message, "")
	return resource.Failed(errs)
}
