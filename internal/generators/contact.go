package generators

import "fmt"

var emailDomains = []string{"gmail.com", "yahoo.com", "outlook.com", "company.com"}

// emails yields user{i}@domain with the domain cycling on the row index.
func emails(rows int) []any {
	out := make([]any, rows)
	for i := range out {
		out[i] = fmt.Sprintf("user%d@%s", i, emailDomains[i%len(emailDomains)])
	}
	return out
}

// phones yields NXX-NXX-XXXX strings: two groups in 200-998 and a line
// number in 1000-9998.
func (s *Sampler) phones(rows int) []any {
	out := make([]any, rows)
	for i := range out {
		out[i] = fmt.Sprintf("%d-%d-%d", 200+s.rng.Intn(799), 200+s.rng.Intn(799), 1000+s.rng.Intn(8999))
	}
	return out
}
