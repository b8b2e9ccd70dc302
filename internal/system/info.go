package system

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// InfoFile holds the system's metadata record.
const InfoFile = "/sys/sysinfo.xml"

// Info is the metadata stored in InfoFile.
type Info struct {
	XMLName    xml.Name `xml:"SystemInfo"`
	SystemName string   `xml:"SystemName"`
}

// DecodeInfo parses an InfoFile document.
func DecodeInfo(data []byte) (Info, error) {
	var info Info
	if err := xml.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("parsing %s: %w", InfoFile, err)
	}
	info.SystemName = strings.TrimSpace(info.SystemName)
	if info.SystemName == "" {
		return Info{}, fmt.Errorf("parsing %s: empty system name", InfoFile)
	}
	return info, nil
}

// EncodeInfo renders info as an InfoFile document.
func EncodeInfo(info Info) ([]byte, error) {
	body, err := xml.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", InfoFile, err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
