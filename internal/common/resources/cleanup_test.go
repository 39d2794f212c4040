package resources

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// Mock resource for testing
type mockResource struct {
	closed bool
	err    error
}

func (m *mockResource) Close() error {
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true
	return m.err
}

func (m *mockResource) IsClosed() bool {
	return m.closed
}

// Mock closer function
type mockCloserFunc func() error

func (f mockCloserFunc) Close() error {
	return f()
}

func TestResourceManager_New(t *testing.T) {
	rm := NewResourceManager()
	if rm == nil {
		t.Fatal("NewResourceManager returned nil")
	}
	if rm.resources == nil {
		t.Error("Resources slice not initialized")
	}
	if rm.closed {
		t.Error("Resource manager should not be closed initially")
	}
}

func TestResourceManager_Register(t *testing.T) {
	rm := NewResourceManager()

	// Register a resource
	resource := &mockResource{}
	rm.Register(resource)

	if len(rm.resources) != 1 {
		t.Errorf("Expected 1 resource, got %d", len(rm.resources))
	}
	if rm.resources[0] != resource {
		t.Error("Registered resource not found")
	}
}

func TestResourceManager_RegisterMultiple(t *testing.T) {
	rm := NewResourceManager()

	// Register multiple resources
	resources := []*mockResource{
		{},
		{},
		{},
	}

	for _, resource := range resources {
		rm.Register(resource)
	}

	if len(rm.resources) != len(resources) {
		t.Errorf("Expected %d resources, got %d", len(resources), len(rm.resources))
	}
}

func TestResourceManager_RegisterFunc(t *testing.T) {
	rm := NewResourceManager()

	called := false
	rm.RegisterFunc(func() error {
		called = true
		return nil
	})

	if len(rm.resources) != 1 {
		t.Errorf("Expected 1 resource, got %d", len(rm.resources))
	}

	// Test that the function is called
	err := rm.resources[0].Close()
	if err != nil {
		t.Errorf("Close function failed: %v", err)
	}
	if !called {
		t.Error("Close function was not called")
	}
}

func TestResourceManager_Close(t *testing.T) {
	rm := NewResourceManager()

	// Register resources
	resources := []*mockResource{
		{},
		{},
		{},
	}

	for _, resource := range resources {
		rm.Register(resource)
	}

	// Close all resources
	err := rm.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Check that all resources are closed
	for _, resource := range resources {
		if !resource.IsClosed() {
			t.Error("Resource was not closed")
		}
	}

	// Check that manager is closed
	if !rm.closed {
		t.Error("Resource manager should be closed")
	}

	// Check that resources slice is cleared
	if rm.resources != nil {
		t.Error("Resources slice should be cleared")
	}
}

func TestResourceManager_CloseReverseOrder(t *testing.T) {
	rm := NewResourceManager()

	// Track close order
	var closeOrder []int
	resources := []*mockResource{
		{},
		{},
		{},
	}

	// Register resources with tracking
	for i, resource := range resources {
		index := i // Capture loop variable
		rm.RegisterFunc(func() error {
			closeOrder = append(closeOrder, index)
			return resource.Close()
		})
	}

	// Close all resources
	err := rm.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Check that resources were closed in reverse order (LIFO)
	expectedOrder := []int{2, 1, 0}
	if len(closeOrder) != len(expectedOrder) {
		t.Errorf("Expected %d close calls, got %d", len(expectedOrder), len(closeOrder))
	}

	for i, expected := range expectedOrder {
		if closeOrder[i] != expected {
			t.Errorf("Expected close order %v, got %v", expectedOrder, closeOrder)
			break
		}
	}
}

func TestResourceManager_CloseWithErrors(t *testing.T) {
	rm := NewResourceManager()

	// Register resources with errors
	resources := []*mockResource{
		{err: errors.New("close error 1")},
		{err: errors.New("close error 2")},
		{}, // No error
	}

	for _, resource := range resources {
		rm.Register(resource)
	}

	// Close all resources
	err := rm.Close()
	if err == nil {
		t.Error("Expected error from Close")
	}

	// Check error message
	expectedMsg := "failed to close 2 resources"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	// Check that all resources are still closed despite errors
	for _, resource := range resources {
		if !resource.IsClosed() {
			t.Error("Resource was not closed")
		}
	}
}

func TestResourceManager_CloseTwice(t *testing.T) {
	rm := NewResourceManager()

	resource := &mockResource{}
	rm.Register(resource)

	// Close first time
	err := rm.Close()
	if err != nil {
		t.Errorf("First close failed: %v", err)
	}

	// Close second time should be no-op
	err = rm.Close()
	if err != nil {
		t.Errorf("Second close failed: %v", err)
	}

	// Resource should only be closed once
	if !resource.IsClosed() {
		t.Error("Resource should be closed")
	}
}

func TestResourceManager_RegisterAfterClose(t *testing.T) {
	rm := NewResourceManager()

	// Close manager
	err := rm.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Register resource after close
	resource := &mockResource{}
	rm.Register(resource)

	// Resource should be closed immediately
	if !resource.IsClosed() {
		t.Error("Resource should be closed immediately when registered after manager close")
	}

	// Resources slice should remain empty
	if len(rm.resources) != 0 {
		t.Errorf("Expected 0 resources after close, got %d", len(rm.resources))
	}
}

func TestSafeClose(t *testing.T) {
	// Note: logger.SetOutput is not available in the current logger implementation
	// This test focuses on the core functionality

	// Test with nil resource
	SafeClose(nil, "nil-resource")

	// Test with valid resource
	resource := &mockResource{}
	SafeClose(resource, "test-resource")

	if !resource.IsClosed() {
		t.Error("Resource should be closed")
	}

	// Test with resource that returns error
	errorResource := &mockResource{err: errors.New("close error")}
	SafeClose(errorResource, "error-resource")

	if !errorResource.IsClosed() {
		t.Error("Resource should be closed despite error")
	}
}

func TestSafeCloseWithTimeout(t *testing.T) {
	// Note: logger.SetOutput is not available in the current logger implementation
	// This test focuses on the core functionality

	// Test with nil resource
	SafeCloseWithTimeout(nil, "nil-resource", 100*time.Millisecond)

	// Test with valid resource
	resource := &mockResource{}
	SafeCloseWithTimeout(resource, "test-resource", 100*time.Millisecond)

	if !resource.IsClosed() {
		t.Error("Resource should be closed")
	}

	// Test with resource that returns error
	errorResource := &mockResource{err: errors.New("close error")}
	SafeCloseWithTimeout(errorResource, "error-resource", 100*time.Millisecond)

	if !errorResource.IsClosed() {
		t.Error("Resource should be closed despite error")
	}
}

func TestSafeCloseWithTimeout_Timeout(t *testing.T) {
	// Note: logger.SetOutput is not available in the current logger implementation
	// This test focuses on the core functionality

	// Create a resource that takes longer than timeout to close
	closed := make(chan struct{})
	slowResource := mockCloserFunc(func() error {
		time.Sleep(100 * time.Millisecond)
		close(closed)
		return nil
	})

	SafeCloseWithTimeout(slowResource, "slow-resource", 50*time.Millisecond)

	// Resource should eventually be closed (goroutine continues)
	select {
	case <-closed:
	case <-time.After(300 * time.Millisecond):
		t.Error("Resource should be closed eventually")
	}
}

func TestWithResource(t *testing.T) {
	var called bool
	var receivedResource io.Closer

	factory := func() (*mockResource, error) {
		return &mockResource{}, nil
	}

	fn := func(resource *mockResource) error {
		called = true
		receivedResource = resource
		return nil
	}

	err := WithResource(factory, fn)
	if err != nil {
		t.Errorf("WithResource failed: %v", err)
	}

	if !called {
		t.Error("Function was not called")
	}
	if receivedResource == nil {
		t.Error("Resource was not passed to function")
	}
	if !receivedResource.(*mockResource).IsClosed() {
		t.Error("Resource should be closed after function returns")
	}
}

func TestWithResource_FactoryError(t *testing.T) {
	factory := func() (*mockResource, error) {
		return nil, errors.New("factory error")
	}

	fn := func(resource *mockResource) error {
		t.Error("Function should not be called when factory fails")
		return nil
	}

	err := WithResource(factory, fn)
	if err == nil {
		t.Error("Expected error from factory")
	}
	if err.Error() != "factory error" {
		t.Errorf("Expected 'factory error', got '%s'", err.Error())
	}
}

func TestWithResource_FunctionError(t *testing.T) {
	factory := func() (*mockResource, error) {
		return &mockResource{}, nil
	}

	fn := func(resource *mockResource) error {
		return errors.New("function error")
	}

	err := WithResource(factory, fn)
	if err == nil {
		t.Error("Expected error from function")
	}
	if err.Error() != "function error" {
		t.Errorf("Expected 'function error', got '%s'", err.Error())
	}
}

func TestWithTimeout(t *testing.T) {
	ctx := context.Background()

	// Test successful function
	fn := func(ctx context.Context) error {
		return nil
	}

	err := WithTimeout(ctx, 100*time.Millisecond, fn)
	if err != nil {
		t.Errorf("WithTimeout failed: %v", err)
	}
}

func TestWithTimeout_FunctionError(t *testing.T) {
	ctx := context.Background()

	fn := func(ctx context.Context) error {
		return errors.New("function error")
	}

	err := WithTimeout(ctx, 100*time.Millisecond, fn)
	if err == nil {
		t.Error("Expected error from function")
	}
	if err.Error() != "function error" {
		t.Errorf("Expected 'function error', got '%s'", err.Error())
	}
}

func TestWithTimeout_Timeout(t *testing.T) {
	ctx := context.Background()

	fn := func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	}

	err := WithTimeout(ctx, 50*time.Millisecond, fn)
	if err == nil {
		t.Error("Expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

// Concurrent tests
func TestResourceManager_Concurrent(t *testing.T) {
	rm := NewResourceManager()

	var wg sync.WaitGroup
	numGoroutines := 10
	resourcesPerGoroutine := 5

	// Concurrent registration
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < resourcesPerGoroutine; j++ {
				rm.Register(&mockResource{})
			}
		}()
	}

	wg.Wait()

	// Check total resources
	expectedTotal := numGoroutines * resourcesPerGoroutine
	if len(rm.resources) != expectedTotal {
		t.Errorf("Expected %d resources, got %d", expectedTotal, len(rm.resources))
	}

	// Close all resources
	err := rm.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

// Benchmark tests
func BenchmarkResourceManager_Register(b *testing.B) {
	rm := NewResourceManager()
	defer rm.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rm.Register(&mockResource{})
	}
}

func BenchmarkResourceManager_Close(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rm := NewResourceManager()
		for j := 0; j < 100; j++ {
			rm.Register(&mockResource{})
		}
		rm.Close()
	}
}

func BenchmarkWithResource(b *testing.B) {
	factory := func() (*mockResource, error) {
		return &mockResource{}, nil
	}

	fn := func(resource *mockResource) error {
		return nil
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		WithResource(factory, fn)
	}
}
