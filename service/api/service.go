// Package api exposes workflow operations as named methods taking positional
// string arguments and replying with a flat status object.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/viant/datarequest/model/types"
	"github.com/viant/datarequest/service/workflow"
	"github.com/viant/datarequest/tracing"
	"github.com/viant/structology/conv"
)

// Name service name
const Name = "datarequest"

// Service dispatches remote calls to the workflow engine
type Service struct {
	engine     *workflow.Engine
	converter  *conv.Converter
	logger     *slog.Logger
	signatures types.Signatures
	methods    map[string]types.Executable
}

// Name returns service name
func (s *Service) Name() string {
	return Name
}

// Methods returns service methods
func (s *Service) Methods() types.Signatures {
	return s.signatures
}

// Method returns service method
func (s *Service) Method(name string) (types.Executable, error) {
	method, ok := s.methods[name]
	if !ok {
		return nil, types.NewMethodNotFoundError(name)
	}
	return method, nil
}

// Call binds positional args to the method input and executes it on behalf of principal
func (s *Service) Call(ctx context.Context, principal, name string, args ...string) (result *Result) {
	ctx, span := tracing.StartCall(ctx, "api."+name, principal)
	defer func() {
		var err error
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "method panicked", "method", name, "principal", principal, "panic", r)
			result = Failure(fmt.Errorf("%v", r))
		}
		if result.Status != StatusOK {
			err = fmt.Errorf("%v: %v", name, result.StatusInfo)
			span.SetErrorKind(result.ErrorKind)
		}
		span.End(err)
	}()
	signature := s.signatures.Lookup(name)
	if signature == nil {
		return Failure(invalidInput(types.NewMethodNotFoundError(name).Error()))
	}
	input, err := s.bind(signature, args)
	if err != nil {
		return Failure(err)
	}
	output := &Output{}
	ctx = types.WithPrincipal(ctx, principal)
	if err = s.methods[name](ctx, input, output); err != nil {
		s.logger.DebugContext(ctx, "method failed", "method", name, "principal", principal, "error", err)
		return Failure(err)
	}
	return OK(output.Fields)
}

func (s *Service) bind(signature *types.Signature, args []string) (interface{}, error) {
	if len(args) != len(signature.Args) {
		return nil, invalidInput(fmt.Sprintf("%v expects %d argument(s): %v, but had %d", signature.Name, len(signature.Args), strings.Join(signature.Args, ", "), len(args)))
	}
	values := make(map[string]interface{}, len(args))
	for i, name := range signature.Args {
		field, ok := fieldByName(signature.Input, name)
		if !ok {
			return nil, fmt.Errorf("%v: unknown input field %v", signature.Name, name)
		}
		if field.Type.Kind() != reflect.Slice {
			values[name] = args[i]
			continue
		}
		var items []string
		if err := json.Unmarshal([]byte(args[i]), &items); err != nil {
			return nil, invalidInput(fmt.Sprintf("%v: %v is not a JSON string array", signature.Name, name))
		}
		values[name] = items
	}
	input := reflect.New(signature.Input).Interface()
	if err := s.converter.Convert(values, input); err != nil {
		return nil, invalidInput(fmt.Sprintf("%v: %v", signature.Name, err))
	}
	return input, nil
}

func (s *Service) register(name, description string, input interface{}, args []string, executable types.Executable) {
	s.signatures = append(s.signatures, types.Signature{
		Name:        name,
		Description: description,
		Args:        args,
		Input:       reflect.TypeOf(input),
		Output:      reflect.TypeOf(Output{}),
	})
	s.methods[name] = executable
}

// fieldByName matches the json name of an input field
func fieldByName(aType reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < aType.NumField(); i++ {
		field := aType.Field(i)
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tag == name || (tag == "" && field.Name == name) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func invalidInput(message string) error {
	return &workflow.Error{Kind: workflow.KindInvalidInput, Message: message}
}

// New creates an api service
func New(engine *workflow.Engine, options ...Option) *Service {
	convOptions := conv.DefaultOptions()
	convOptions.ClonePointerData = true
	convOptions.IgnoreUnmapped = true
	convOptions.AccessUnexported = true
	ret := &Service{
		engine:    engine,
		converter: conv.NewConverter(convOptions),
		logger:    slog.Default(),
		methods:   map[string]types.Executable{},
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.registerMethods()
	return ret
}
