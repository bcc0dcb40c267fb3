package main

import (
	"fmt"

	"github.com/ternarybob/policyqa/internal/common"
)

func printVersion() {
	fmt.Printf("PolicyQA version %s\n", common.GetFullVersion())
}
