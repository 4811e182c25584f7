// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// cardlab 命令列：console 牌局、模擬、HTTP 服務與產生器原始輸出。
//
//	cardlab play --rng mt19937 --seed 5489
//	cardlab sim --table 2 --rounds 1000000 --worker 8
//	cardlab serve --addr :5808 --log-mode prod
//	cardlab draw --rng lcg --seed 1 -n 10 --buckets 16
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
