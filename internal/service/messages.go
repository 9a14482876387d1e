package service

import "strings"

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func requiredMessage(field string) string {
	return "The " + humanize(field) + " field is required."
}
