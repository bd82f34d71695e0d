//
// Copyright (c) SAS Institute Inc.
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
//

package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	m := New(100)
	defer m.Close()
	ctx := context.Background()

	release1, err := m.Request(ctx, 60, "first")
	require.NoError(t, err)
	assert.EqualValues(t, 40, m.Free())

	_, err = m.Request(ctx, 101, "huge")
	assert.ErrorIs(t, err, ErrTooBig)

	// second request has to wait for the first to be released
	granted := make(chan CancelFunc)
	go func() {
		release2, err := m.Request(ctx, 50, "second")
		assert.NoError(t, err)
		granted <- release2
	}()
	select {
	case <-granted:
		t.Fatal("request granted while budget was exhausted")
	case <-time.After(50 * time.Millisecond):
	}
	release1()
	release1() // idempotent
	var release2 CancelFunc
	select {
	case release2 = <-granted:
	case <-time.After(5 * time.Second):
		t.Fatal("request was never granted")
	}
	release2()
	assert.Eventually(t, func() bool { return m.Free() == 100 }, 5*time.Second, time.Millisecond)
}

func TestRequestCancelled(t *testing.T) {
	m := New(10)
	defer m.Close()
	release, err := m.Request(context.Background(), 10, "hog")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Request(ctx, 5, "waiter")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	assert.Eventually(t, func() bool { return m.Free() == 10 }, 5*time.Second, time.Millisecond)
	// the abandoned request must not hold any space
	release, err = m.Request(context.Background(), 10, "again")
	require.NoError(t, err)
	release()
}

func TestClose(t *testing.T) {
	m := New(10)
	m.Close()
	_, err := m.Request(context.Background(), 1, "late")
	assert.ErrorIs(t, err, ErrClosed)
}
