package capture

import (
	"regexp"
	"strconv"
)

var (
	svgTagRe = regexp.MustCompile(`<svg[^>]*>`)
	widthRe  = regexp.MustCompile(`\swidth="([0-9.]+)"`)
	heightRe = regexp.MustCompile(`\sheight="([0-9.]+)"`)
)

// svgSize reads the width and height attributes of the root svg element.
func svgSize(svg []byte) (w, h float64) {
	tag := svgTagRe.Find(svg)
	if tag == nil {
		return 0, 0
	}
	if m := widthRe.FindSubmatch(tag); m != nil {
		w, _ = strconv.ParseFloat(string(m[1]), 64)
	}
	if m := heightRe.FindSubmatch(tag); m != nil {
		h, _ = strconv.ParseFloat(string(m[1]), 64)
	}
	return w, h
}
