package analytics

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Geo resolves an IP address to country and city. A nil reader degrades to
// no enrichment, so the service runs without the GeoLite database present.
type Geo struct {
	reader *geoip2.Reader
}

// OpenGeo loads a MaxMind city database from disk.
func OpenGeo(path string) (*Geo, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &Geo{reader: reader}, nil
}

// NoGeo returns a resolver that never resolves anything.
func NoGeo() *Geo { return &Geo{} }

// Locate returns the English country and city names for an IP, or empty
// strings when the IP is unparseable or unknown.
func (g *Geo) Locate(ipAddr string) (country, city string) {
	if g == nil || g.reader == nil {
		return "", ""
	}
	ip := net.ParseIP(ipAddr)
	if ip == nil {
		return "", ""
	}
	record, err := g.reader.City(ip)
	if err != nil {
		return "", ""
	}
	if name, ok := record.Country.Names["en"]; ok {
		country = name
	}
	if name, ok := record.City.Names["en"]; ok {
		city = name
	}
	return country, city
}

func (g *Geo) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}
