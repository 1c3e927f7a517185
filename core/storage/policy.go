package storage

import (
	"encoding/json"
	"fmt"
)

// AccessPolicy is the anonymous access level of a container.
type AccessPolicy string

const (
	// AccessPrivate allows no anonymous access.
	AccessPrivate AccessPolicy = "private"
	// AccessPublicBlob allows anonymous reads of individual objects, not listing.
	AccessPublicBlob AccessPolicy = "blob"
)

type policyStatement struct {
	Effect    string              `json:"Effect"`
	Principal map[string][]string `json:"Principal"`
	Action    []string            `json:"Action"`
	Resource  []string            `json:"Resource"`
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// Document returns the S3 bucket policy implementing p for bucket.
// AccessPrivate yields an empty document, which removes any existing policy.
func (p AccessPolicy) Document(bucket string) (string, error) {
	switch p {
	case AccessPrivate:
		return "", nil
	case AccessPublicBlob:
		doc := policyDocument{
			Version: "2012-10-17",
			Statement: []policyStatement{{
				Effect:    "Allow",
				Principal: map[string][]string{"AWS": {"*"}},
				Action:    []string{"s3:GetObject"},
				Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
			}},
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown access policy %q", string(p))
	}
}
