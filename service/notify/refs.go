package notify

import (
	"fmt"
	"strconv"
	"strings"
)

// A mail task references its subject as "OR_<order id>" or
// "EX_<extension id>".
const (
	refOrder     = "OR"
	refExtension = "EX"
)

func OrderRef(orderID int64) string { return fmt.Sprintf("%s_%d", refOrder, orderID) }

func ExtensionRef(extensionID int64) string {
	return fmt.Sprintf("%s_%d", refExtension, extensionID)
}

func parseRef(ref string) (kind string, id int64, err error) {
	kind, rawID, ok := strings.Cut(ref, "_")
	if !ok || (kind != refOrder && kind != refExtension) {
		return "", 0, fmt.Errorf("malformed mail ref %q", ref)
	}
	id, err = strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("malformed mail ref %q", ref)
	}
	return kind, id, nil
}
